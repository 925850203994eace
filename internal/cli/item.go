package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/datatable/internal/logging"
	"github.com/rshade/datatable/internal/tui"
)

// itemCommand holds what every single-item command resolves before it runs.
type itemCommand struct {
	src    *source
	format string
}

func prepareItemCommand(cmd *cobra.Command, output string) (*itemCommand, error) {
	inv, err := invocationFrom(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := inv.config()
	if err != nil {
		return nil, err
	}
	format, err := parseOutputFormat(output, formatJSON, formatYAML)
	if err != nil {
		return nil, err
	}
	src, err := openSource(cfg, inv.logger)
	if err != nil {
		return nil, err
	}
	return &itemCommand{src: src, format: format}, nil
}

func (c *itemCommand) render(cmd *cobra.Command, row tui.Row) error {
	if c.format == formatYAML {
		return renderYAML(cmd.OutOrStdout(), row)
	}
	return renderJSON(cmd.OutOrStdout(), row)
}

// itemData reads an item body given inline or from a file ("-" for stdin).
// JSON and YAML are both accepted.
type itemData struct {
	inline string
	file   string
}

func (d *itemData) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&d.inline, "data", "d", "", "item as JSON or YAML")
	cmd.Flags().StringVarP(&d.file, "file", "f", "", "read the item from a file, - for stdin")
	cmd.MarkFlagsMutuallyExclusive("data", "file")
}

func (d *itemData) row(in io.Reader) (tui.Row, error) {
	raw := []byte(d.inline)
	switch {
	case d.file == "-":
		b, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("reading item from stdin: %w", err)
		}
		raw = b
	case d.file != "":
		b, err := os.ReadFile(d.file)
		if err != nil {
			return nil, fmt.Errorf("reading item file: %w", err)
		}
		raw = b
	}

	var row tui.Row
	if err := yaml.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("parsing item: %w", err)
	}
	if len(row) == 0 {
		return nil, ErrNoItemData
	}
	return row, nil
}

// NewGetCmd creates the get command, which prints one item.
func NewGetCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print one item",
		Example: `  # Item 42 as YAML
  datatable get 42 -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := prepareItemCommand(cmd, output)
			if err != nil {
				return err
			}
			row, err := c.src.items.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("getting item %s: %w", args[0], err)
			}
			return c.render(cmd, row)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatJSON, "output format: json or yaml")
	return cmd
}

// NewCreateCmd creates the create command.
func NewCreateCmd() *cobra.Command {
	var (
		data   itemData
		output string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an item",
		Long: `Posts an item to the collection and prints the stored item.
Cached listings are dropped after a successful write.`,
		Example: `  # Inline JSON
  datatable create -d '{"name":"Grace Hopper","city":"Arlington"}'

  # From a YAML file
  datatable create -f item.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := prepareItemCommand(cmd, output)
			if err != nil {
				return err
			}
			row, err := data.row(cmd.InOrStdin())
			if err != nil {
				return err
			}
			stored, err := c.src.items.Create(cmd.Context(), row)
			if err != nil {
				return fmt.Errorf("creating item: %w", err)
			}
			c.src.written()
			logging.FromContext(cmd.Context()).Info().Ctx(cmd.Context()).Msg("item created")
			return c.render(cmd, stored)
		},
	}

	data.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", formatJSON, "output format: json or yaml")
	return cmd
}

// NewUpdateCmd creates the update command.
func NewUpdateCmd() *cobra.Command {
	var (
		data   itemData
		output string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace an item",
		Long: `Replaces the item with the given id and prints the stored item.
Cached listings are dropped after a successful write.`,
		Example: `  # Deactivate item 7
  datatable update 7 -d '{"name":"Ada Lovelace 7","active":false}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := prepareItemCommand(cmd, output)
			if err != nil {
				return err
			}
			row, err := data.row(cmd.InOrStdin())
			if err != nil {
				return err
			}
			stored, err := c.src.items.Update(cmd.Context(), args[0], row)
			if err != nil {
				return fmt.Errorf("updating item %s: %w", args[0], err)
			}
			c.src.written()
			logging.FromContext(cmd.Context()).Info().Ctx(cmd.Context()).Str("id", args[0]).Msg("item updated")
			return c.render(cmd, stored)
		},
	}

	data.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", formatJSON, "output format: json or yaml")
	return cmd
}

// NewDeleteCmd creates the delete command.
func NewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete an item",
		Example: "  datatable delete 7",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := prepareItemCommand(cmd, formatJSON)
			if err != nil {
				return err
			}
			if err := c.src.items.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("deleting item %s: %w", args[0], err)
			}
			c.src.written()
			logging.FromContext(cmd.Context()).Info().Ctx(cmd.Context()).Str("id", args[0]).Msg("item deleted")
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted item %s\n", args[0])
			return nil
		},
	}
}
