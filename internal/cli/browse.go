package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/datatable/internal/config"
	"github.com/rshade/datatable/internal/coordinator"
	"github.com/rshade/datatable/internal/fetch"
	"github.com/rshade/datatable/internal/metrics"
	"github.com/rshade/datatable/internal/query"
	"github.com/rshade/datatable/internal/server"
	"github.com/rshade/datatable/internal/trigger"
	"github.com/rshade/datatable/internal/tui"
)

// NewBrowseCmd creates the interactive browse command.
func NewBrowseCmd() *cobra.Command {
	var (
		flags       queryFlags
		title       string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the list endpoint interactively",
		Long: `Opens a terminal table bound to the list endpoint.

Typing in the filter searches after a short pause; sorting and searching
return to the first page. Use --metrics-addr to expose fetch cycle metrics
while browsing.`,
		Example: `  # Browse the configured endpoint
  datatable browse

  # Start on page 2, sorted by city, with fetch metrics on :9090
  datatable browse --sort city --page 2 --metrics-addr 127.0.0.1:9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv, err := invocationFrom(cmd)
			if err != nil {
				return err
			}
			cfg, err := inv.config()
			if err != nil {
				return err
			}
			if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
				return ErrNotTerminal
			}
			state, err := flags.state(cfg)
			if err != nil {
				return err
			}
			if title == "" {
				title = cfg.Source.BaseURL
			}

			src, err := newSource(cfg, inv.logger)
			if err != nil {
				return err
			}
			return runBrowser(cmd.Context(), browseOptions{
				cfg:         cfg,
				state:       state,
				title:       title,
				metricsAddr: metricsAddr,
				src:         src,
				logger:      inv.logger,
			})
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVar(&title, "title", "", "table title (default the endpoint URL)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve fetch cycle metrics on this address")

	return cmd
}

type browseOptions struct {
	cfg         *config.Config
	state       query.State
	title       string
	metricsAddr string
	src         fetch.Fetcher[tui.Row]
	logger      zerolog.Logger
}

// runBrowser wires the coordinator, the trigger sources and the table model,
// and blocks until the user quits.
func runBrowser(ctx context.Context, opts browseOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	notifier := &tui.Notifier{}
	observers := coordinator.MultiObserver{notifier}
	if opts.metricsAddr != "" {
		collector := metrics.New()
		observers = append(observers, collector)
		go func() {
			if err := server.Serve(ctx, opts.metricsAddr, collector.Handler(), opts.logger); err != nil {
				opts.logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	coord := coordinator.New[tui.Row](
		coordinator.WithLogger(opts.logger),
		coordinator.WithObserver(observers),
	)
	pager := trigger.NewPager(coord.OnPageTrigger, opts.state.PageSize, opts.cfg.Table.PageSizes)
	search := trigger.NewSearchDebouncer(pager.ResetOn(coord.OnSearchTrigger),
		trigger.WithQuiet(opts.cfg.Table.Debounce),
		trigger.WithMinFilter(opts.cfg.Table.MinFilter),
		trigger.WithSearchLogger(opts.logger),
	)
	defer search.Close()

	model := tui.NewModel(tui.Options[tui.Row]{
		Title:       opts.title,
		Columns:     tui.RowColumns(sampleColumns(ctx, opts.cfg, opts.src)),
		Coordinator: coord,
		Search:      search,
		Sort:        trigger.NewSortCycler(coord.OnSortTrigger, opts.state.SortField, opts.state.SortOrder),
		Pager:       pager,
		Logger:      opts.logger,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	notifier.SetProgram(program)
	dispose := tui.Bind(program, coord)
	defer dispose()

	if err := coord.Attach(opts.src,
		coordinator.Sort{Field: opts.state.SortField, Order: opts.state.SortOrder},
		coordinator.PageRequest{Index: opts.state.PageIndex, Size: opts.state.PageSize},
		opts.state.Keyword,
		coordinator.WithExtraParams(opts.state.Extra),
	); err != nil {
		return err
	}
	defer coord.Detach()

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running table view: %w", err)
	}
	return nil
}
