package coordinator_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rshade/datatable/internal/coordinator"
	"github.com/rshade/datatable/internal/query"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// fetchCall is one pending Fetch invocation on a controlledFetcher.
type fetchCall struct {
	ctx    context.Context
	params query.Parameters
	reply  chan fetchResult
}

type fetchResult struct {
	page query.Page[string]
	err  error
}

func (c *fetchCall) succeed(total int, items ...string) {
	c.reply <- fetchResult{page: query.Page[string]{Items: items, Total: total}}
}

func (c *fetchCall) fail(err error) {
	c.reply <- fetchResult{err: err}
}

// controlledFetcher blocks every Fetch until the test answers it. It ignores
// context cancellation so superseded fetches still resolve late.
type controlledFetcher struct {
	calls chan *fetchCall
}

func newControlledFetcher() *controlledFetcher {
	return &controlledFetcher{calls: make(chan *fetchCall, 64)}
}

func (f *controlledFetcher) Fetch(ctx context.Context, params query.Parameters) (query.Page[string], error) {
	call := &fetchCall{ctx: ctx, params: params, reply: make(chan fetchResult, 1)}
	f.calls <- call
	select {
	case res := <-call.reply:
		return res.page, res.err
	case <-time.After(10 * time.Second):
		return query.Page[string]{}, context.DeadlineExceeded
	}
}

func (f *controlledFetcher) next(t *testing.T) *fetchCall {
	t.Helper()
	select {
	case call := <-f.calls:
		return call
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for fetch")
		return nil
	}
}

func (f *controlledFetcher) assertIdle(t *testing.T) {
	t.Helper()
	select {
	case call := <-f.calls:
		t.Fatalf("unexpected fetch with %+v", call.params)
	case <-time.After(50 * time.Millisecond):
	}
}

// recorder captures subscriber callbacks in delivery order.
type recorder struct {
	mu     sync.Mutex
	events []string
	pages  []query.Page[string]
}

func (r *recorder) subscribe(c *coordinator.Coordinator[string]) func() {
	return c.Subscribe(r.onPage, r.onLoading)
}

func (r *recorder) onPage(p query.Page[string]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, p)
	r.events = append(r.events, "page:"+strings.Join(p.Items, ","))
}

func (r *recorder) onLoading(loading bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if loading {
		r.events = append(r.events, "loading:true")
	} else {
		r.events = append(r.events, "loading:false")
	}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) lastPage() (query.Page[string], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pages) == 0 {
		return query.Page[string]{}, false
	}
	return r.pages[len(r.pages)-1], true
}

func (r *recorder) count(event string) int {
	n := 0
	for _, e := range r.snapshot() {
		if e == event {
			n++
		}
	}
	return n
}

func (r *recorder) waitEvents(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(r.snapshot()) >= n }, waitFor, tick)
}

// countingObserver records observer calls.
type countingObserver struct {
	mu        sync.Mutex
	started   []uint64
	completed []uint64
	discarded []uint64
	errs      []error
}

func (o *countingObserver) CycleStarted(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, gen)
}

func (o *countingObserver) CycleCompleted(gen uint64, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed = append(o.completed, gen)
	o.errs = append(o.errs, err)
}

func (o *countingObserver) CycleDiscarded(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.discarded = append(o.discarded, gen)
}

func (o *countingObserver) discards() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.discarded)
}

func (o *countingObserver) lastErr() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.errs) == 0 {
		return nil
	}
	return o.errs[len(o.errs)-1]
}
