// Package metrics exports coordinator fetch cycles as Prometheus metrics.
//
// Metrics collected:
//   - datatable_fetch_cycles_total: cycles issued
//   - datatable_fetch_failures_total: current cycles that resolved with an error
//   - datatable_stale_discards_total: superseded cycles whose result was dropped
//   - datatable_fetch_duration_seconds: duration of resolved current cycles
//   - datatable_loading: 1 while a cycle is outstanding
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "datatable").
	Namespace string

	// ConstLabels are added to every metric, typically the source name.
	ConstLabels prometheus.Labels

	// Buckets are the fetch duration histogram buckets.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry receives the collectors. Default: a fresh registry.
	Registry *prometheus.Registry
}

// Option configures Config.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// Collector records coordinator cycle events. It satisfies
// coordinator.Observer.
type Collector struct {
	registry *prometheus.Registry

	cycles   prometheus.Counter
	failures prometheus.Counter
	discards prometheus.Counter
	duration prometheus.Histogram
	loading  prometheus.Gauge
}

// New registers the collectors.
func New(opts ...Option) *Collector {
	cfg := Config{
		Namespace: "datatable",
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(cfg.Registry)
	return &Collector{
		registry: cfg.Registry,
		cycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "fetch_cycles_total",
			Help:        "Total number of fetch cycles issued",
			ConstLabels: cfg.ConstLabels,
		}),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "fetch_failures_total",
			Help:        "Total number of fetch cycles that failed and published an empty page",
			ConstLabels: cfg.ConstLabels,
		}),
		discards: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "stale_discards_total",
			Help:        "Total number of superseded fetch results that were dropped",
			ConstLabels: cfg.ConstLabels,
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Name:        "fetch_duration_seconds",
			Help:        "Duration of resolved fetch cycles in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),
		loading: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        "loading",
			Help:        "1 while a fetch cycle is outstanding",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// CycleStarted counts a cycle and raises the loading gauge.
func (c *Collector) CycleStarted(uint64) {
	c.cycles.Inc()
	c.loading.Set(1)
}

// CycleCompleted records the duration and clears the loading gauge.
func (c *Collector) CycleCompleted(_ uint64, duration time.Duration, err error) {
	c.duration.Observe(duration.Seconds())
	if err != nil {
		c.failures.Inc()
	}
	c.loading.Set(0)
}

// CycleDiscarded counts a dropped stale result.
func (c *Collector) CycleDiscarded(uint64) {
	c.discards.Inc()
}

// Registry returns the registry the collectors live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
