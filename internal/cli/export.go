package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/datatable/internal/fetch"
	"github.com/rshade/datatable/internal/logging"
)

// exportPageSize is the default page size used to walk a listing.
const exportPageSize = 100

// NewExportCmd creates the export command, which fetches every page.
func NewExportCmd() *cobra.Command {
	var (
		flags       queryFlags
		output      string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch every matching item",
		Long: `Walks the whole listing and writes every matching item.

The first page is fetched to learn the total, then the remaining pages are
fetched concurrently and written in order.`,
		Example: `  # Everything as a JSON array
  datatable export > items.json

  # Matches for "ada" as newline-delimited JSON, 8 requests at a time
  datatable export --search ada -o ndjson --concurrency 8`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv, err := invocationFrom(cmd)
			if err != nil {
				return err
			}
			cfg, err := inv.config()
			if err != nil {
				return err
			}
			format, err := parseOutputFormat(output, formatJSON, formatNDJSON, formatYAML)
			if err != nil {
				return err
			}

			if flags.pageSize == 0 {
				flags.pageSize = exportPageSize
			}
			state, err := flags.state(cfg)
			if err != nil {
				return err
			}

			src, err := newSource(cfg, inv.logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			log := logging.FromContext(ctx)
			start := time.Now()
			items, err := fetch.FetchAll(ctx, src, state.Parameters(), state.PageSize, concurrency)
			if err != nil {
				log.Error().Ctx(ctx).Err(err).Msg("export failed")
				return fmt.Errorf("exporting items: %w", err)
			}
			log.Info().Ctx(ctx).
				Int("items", len(items)).
				Dur("duration", time.Since(start)).
				Msg("export complete")

			switch format {
			case formatNDJSON:
				return renderNDJSON(cmd.OutOrStdout(), items)
			case formatYAML:
				return renderYAML(cmd.OutOrStdout(), items)
			default:
				return renderJSON(cmd.OutOrStdout(), items)
			}
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVarP(&output, "output", "o", formatJSON, "output format: json, ndjson or yaml")
	cmd.Flags().IntVar(&concurrency, "concurrency", fetch.DefaultConcurrency, "maximum parallel page requests")

	return cmd
}
