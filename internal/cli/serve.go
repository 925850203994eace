package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/rshade/datatable/internal/metrics"
	"github.com/rshade/datatable/internal/server"
)

// Serve defaults.
const (
	defaultServeAddr = "127.0.0.1:8080"
	defaultSeedItems = 100
)

// NewServeCmd creates the serve command, which runs the demo list backend.
func NewServeCmd() *cobra.Command {
	var (
		addr        string
		seed        int
		latency     time.Duration
		failureRate float64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo list backend",
		Long: `Serves a seeded in-memory collection at /api/items/ with limit/offset
paging, search, ordering and CRUD routes. Process metrics are exposed at /metrics.

--latency and --failure-rate slow down or fail list requests so the
browse view's loading and error handling can be observed.`,
		Example: `  # Serve 500 items on the default address
  datatable serve --seed 500

  # Slow, flaky backend
  datatable serve --latency 800ms --failure-rate 0.2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv, err := invocationFrom(cmd)
			if err != nil {
				return err
			}
			if seed < 0 {
				return fmt.Errorf("seed must be >= 0, got %d", seed)
			}
			if failureRate < 0 || failureRate > 1 {
				return fmt.Errorf("failure-rate must be between 0 and 1, got %g", failureRate)
			}

			collector := metrics.New()
			collector.Registry().MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			store := server.NewStore(server.SeedItems(seed))
			h := server.New(store,
				server.WithLogger(inv.logger),
				server.WithLatency(latency),
				server.WithFailureRate(failureRate),
				server.WithMetrics(collector.Handler()),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving %d items at http://%s%s\n", store.Len(), addr, server.ItemsPath)
			return server.Serve(ctx, addr, h, inv.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultServeAddr, "listen address")
	cmd.Flags().IntVar(&seed, "seed", defaultSeedItems, "number of generated items")
	cmd.Flags().DurationVar(&latency, "latency", 0, "artificial delay added to list responses")
	cmd.Flags().Float64Var(&failureRate, "failure-rate", 0, "probability (0-1) that a list request fails with 503")

	return cmd
}
