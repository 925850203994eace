package metrics_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/datatable/internal/coordinator"
	"github.com/rshade/datatable/internal/metrics"
)

var _ coordinator.Observer = (*metrics.Collector)(nil)

func TestCollector_CycleEvents(t *testing.T) {
	c := metrics.New(metrics.WithConstLabels(prometheus.Labels{"source": "items"}))

	c.CycleStarted(1)
	c.CycleStarted(2)
	c.CycleDiscarded(1)
	c.CycleCompleted(2, 120*time.Millisecond, nil)
	c.CycleStarted(3)
	c.CycleCompleted(3, 40*time.Millisecond, errors.New("boom"))

	expected := `
# HELP datatable_fetch_cycles_total Total number of fetch cycles issued
# TYPE datatable_fetch_cycles_total counter
datatable_fetch_cycles_total{source="items"} 3
# HELP datatable_fetch_failures_total Total number of fetch cycles that failed and published an empty page
# TYPE datatable_fetch_failures_total counter
datatable_fetch_failures_total{source="items"} 1
# HELP datatable_loading 1 while a fetch cycle is outstanding
# TYPE datatable_loading gauge
datatable_loading{source="items"} 0
# HELP datatable_stale_discards_total Total number of superseded fetch results that were dropped
# TYPE datatable_stale_discards_total counter
datatable_stale_discards_total{source="items"} 1
`
	require.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected),
		"datatable_fetch_cycles_total",
		"datatable_fetch_failures_total",
		"datatable_loading",
		"datatable_stale_discards_total",
	))

	count, err := testutil.GatherAndCount(c.Registry(), "datatable_fetch_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCollector_Handler(t *testing.T) {
	c := metrics.New(metrics.WithNamespace("demo"))
	c.CycleStarted(1)

	srv := httptest.NewServer(c.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "demo_fetch_cycles_total 1")
	assert.Contains(t, string(body), "demo_loading 1")
}
