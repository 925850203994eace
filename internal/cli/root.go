package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRootCmd creates the root Cobra command for the datatable CLI.
// It loads configuration, wires up logging and trace IDs, and registers the
// browse, list, export, serve and config subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var rt *invocation

	cmd := &cobra.Command{
		Use:          "datatable",
		Short:        "Browse paginated list APIs",
		Long:         "datatable: sort, search and page through REST list endpoints from the terminal",
		Version:      ver,
		Example:      rootCmdExample,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Negative values cause undefined cache expiry behavior.
			cacheTTL, _ := cmd.Flags().GetInt("cache-ttl")
			if cacheTTL < 0 {
				return fmt.Errorf("cache-ttl must be >= 0, got %d", cacheTTL)
			}

			r, err := setupInvocation(cmd)
			if err != nil {
				return err
			}
			rt = r
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return rt.close()
		},
	}

	cmd.PersistentFlags().String("config", "", "config file (default $DATATABLE_HOME/config.yaml)")
	cmd.PersistentFlags().String("project-dir", "", "project directory holding a .datatable overlay")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("base-url", "", "list endpoint URL (overrides source.base_url)")
	cmd.PersistentFlags().
		Int("cache-ttl", 0, "cache TTL in seconds (0 = use config default, overrides config file and env var)")
	cmd.PersistentFlags().Bool("cache", false, "cache fetched pages on disk (overrides cache.enabled)")

	cmd.AddCommand(
		NewBrowseCmd(), NewListCmd(), NewExportCmd(),
		NewGetCmd(), NewCreateCmd(), NewUpdateCmd(), NewDeleteCmd(),
		NewServeCmd(), newConfigCmd(),
	)

	return cmd
}

const rootCmdExample = `  # Start the demo backend with 250 seeded items
  datatable serve --seed 250

  # Browse it interactively
  datatable browse

  # Print the second page of matches for "ada", newest id first
  datatable list --search ada --sort id:desc --page 2

  # Export every item as newline-delimited JSON
  datatable export -o ndjson > items.ndjson

  # Initialize configuration
  datatable config init`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(), NewConfigShowCmd(), NewConfigValidateCmd(), NewConfigPathCmd(),
	)
	return cmd
}
