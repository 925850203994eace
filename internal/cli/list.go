package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/datatable/internal/logging"
	"github.com/rshade/datatable/internal/query"
)

// NewListCmd creates the list command, which fetches and prints one page.
func NewListCmd() *cobra.Command {
	var (
		flags  queryFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of items",
		Long: `Fetches a single page from the list endpoint and prints it.

Output defaults to a table on a terminal and JSON otherwise.`,
		Example: `  # First page in the configured order
  datatable list

  # Third page of 25 items matching "london", by name descending
  datatable list --search london --sort name:desc --page 3 --page-size 25

  # Only active items, as YAML
  datatable list --filter active=true -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv, err := invocationFrom(cmd)
			if err != nil {
				return err
			}
			cfg, err := inv.config()
			if err != nil {
				return err
			}

			format := output
			if format == "" {
				format = defaultFormat(cmd.OutOrStdout())
			}
			if format, err = parseOutputFormat(format, formatTable, formatJSON, formatYAML); err != nil {
				return err
			}

			state, err := flags.state(cfg)
			if err != nil {
				return err
			}
			params := state.Parameters()

			src, err := newSource(cfg, inv.logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			log := logging.FromContext(ctx)
			page, err := src.Fetch(ctx, params)
			if err != nil {
				log.Error().Ctx(ctx).Err(err).Str("query", params.Values().Encode()).Msg("list failed")
				return fmt.Errorf("listing items: %w", err)
			}
			log.Debug().Ctx(ctx).Int("items", page.Len()).Int("total", page.Total).Msg("page fetched")

			meta := query.NewMeta(params, page.Total)
			switch format {
			case formatJSON:
				return renderJSON(cmd.OutOrStdout(), listResult{Items: page.Items, Total: page.Total, Meta: meta})
			case formatYAML:
				return renderYAML(cmd.OutOrStdout(), listResult{Items: page.Items, Total: page.Total, Meta: meta})
			default:
				return renderTable(cmd.OutOrStdout(), columnsFor(cfg, page.Items), page.Items, &meta)
			}
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: table, json or yaml")

	return cmd
}
