package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/datatable/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
// Inside a project (a .datatable directory was found or --project-dir was
// given) it writes the project overlay unless --global is set.
func NewConfigInitCmd() *cobra.Command {
	var (
		force  bool
		global bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

Inside a project, creates the project-local overlay at
$PROJECT/.datatable/config.yaml. Use --global to write the global
configuration even inside a project.`,
		Example: `  # Create the global configuration
  datatable config init --global

  # Create configuration, overwriting existing
  datatable config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv, err := invocationFrom(cmd)
			if err != nil {
				return err
			}

			path := inv.configPath
			if inv.projectDir != "" && !global {
				path = filepath.Join(inv.projectDir, config.FileName)
			}

			if !force {
				_, statErr := os.Stat(path)
				if statErr == nil {
					return ErrConfigExists
				}
				if !errors.Is(statErr, os.ErrNotExist) {
					return fmt.Errorf("cannot access config path %s: %w", path, statErr)
				}
			}

			if err := config.New().Save(path); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().BoolVar(&global, "global", false, "force global configuration init even inside a project")

	return cmd
}

// NewConfigShowCmd creates the config show command, which prints the
// effective configuration after overlays, env and flags.
func NewConfigShowCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv, err := invocationFrom(cmd)
			if err != nil {
				return err
			}
			if inv.cfgErr != nil {
				return inv.cfgErr
			}
			format, err := parseOutputFormat(output, formatYAML, formatJSON)
			if err != nil {
				return err
			}
			if format == formatJSON {
				return renderJSON(cmd.OutOrStdout(), inv.cfg)
			}
			return renderYAML(cmd.OutOrStdout(), inv.cfg)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatYAML, "output format: yaml or json")

	return cmd
}

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration for syntax and semantic correctness:
the schema version, the source URL and timeout, table defaults and columns,
cache TTL and logging format.`,
		Example: `  # Validate current configuration
  datatable config validate`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv, err := invocationFrom(cmd)
			if err != nil {
				return err
			}
			if _, err = inv.config(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
			return nil
		},
	}
}

// NewConfigPathCmd creates the config path command.
func NewConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file locations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv, err := invocationFrom(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "global:  %s\n", inv.configPath)
			if inv.projectDir != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "project: %s\n", filepath.Join(inv.projectDir, config.FileName))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cache:   %s\n", inv.cfg.CacheDir())
			return nil
		},
	}
}
