package coordinator

import (
	"fmt"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/rshade/datatable/internal/fetch"
	"github.com/rshade/datatable/internal/logging"
	"github.com/rshade/datatable/internal/query"
)

// Sort is an initial or requested ordering.
type Sort struct {
	Field string
	Order query.SortOrder
}

// PageRequest selects a page. A zero Size disables paging.
type PageRequest struct {
	Index int
	Size  int
}

// Coordinator drives the fetches of one list view.
type Coordinator[T any] struct {
	logger   zerolog.Logger
	observer Observer

	mu      sync.Mutex
	session *session[T]
	state   query.State
	subs    []*subscription[T]
}

type subscription[T any] struct {
	onPage    func(query.Page[T])
	onLoading func(bool)
	active    atomic.Bool
}

// New creates a detached coordinator.
func New[T any](opts ...Option) *Coordinator[T] {
	o := options{
		logger:   zerolog.Nop(),
		observer: NoopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Coordinator[T]{
		logger:   logging.ComponentLogger(o.logger, "coordinator"),
		observer: o.observer,
	}
}

// Attach binds the coordinator to f, seeds its state and schedules the
// initial fetch. opts complete the starting state before that fetch is built.
func (c *Coordinator[T]) Attach(f fetch.Fetcher[T], sort Sort, page PageRequest, keyword string, opts ...AttachOption) error {
	if f == nil {
		return lifecycleErr("attach", ErrNilFetcher)
	}
	if err := validatePage(page.Index, page.Size); err != nil {
		return lifecycleErr("attach", err)
	}
	if err := validateOrder(sort.Order); err != nil {
		return lifecycleErr("attach", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return lifecycleErr("attach", ErrAlreadyAttached)
	}

	c.state = query.State{
		SortField: sort.Field,
		SortOrder: normalizeOrder(sort.Order),
		PageIndex: page.Index,
		PageSize:  page.Size,
		Keyword:   keyword,
	}
	for _, opt := range opts {
		opt(&c.state)
	}

	id := logging.NewTraceID()
	logger := c.logger.With().Str("session", id).Logger()
	c.session = newSession(c, f, logger)
	go c.session.run()

	logger.Debug().
		Str("sort_field", sort.Field).
		Str("sort_order", string(c.state.SortOrder)).
		Int("page_index", page.Index).
		Int("page_size", page.Size).
		Int("extra_params", len(c.state.Extra)).
		Msg("coordinator attached")

	c.scheduleLocked()
	return nil
}

// OnSortTrigger applies a new ordering and returns to the first page.
func (c *Coordinator[T]) OnSortTrigger(field string, order query.SortOrder) error {
	if err := validateOrder(order); err != nil {
		return lifecycleErr("sort", err)
	}
	return c.update("sort", func(s query.State) query.State {
		return s.WithSort(field, normalizeOrder(order))
	})
}

// OnPageTrigger selects a page, keeping sort and search.
func (c *Coordinator[T]) OnPageTrigger(index, size int) error {
	if err := validatePage(index, size); err != nil {
		return lifecycleErr("page", err)
	}
	return c.update("page", func(s query.State) query.State {
		return s.WithPage(index, size)
	})
}

// OnSearchTrigger applies a search keyword and returns to the first page.
// Debouncing and length filtering belong to the caller.
func (c *Coordinator[T]) OnSearchTrigger(keyword string) error {
	return c.update("search", func(s query.State) query.State {
		return s.WithKeyword(keyword)
	})
}

// Reload refetches from the first page with the current sort and search.
func (c *Coordinator[T]) Reload() error {
	return c.update("reload", query.State.FirstPage)
}

// SetExtraParams replaces the extra query parameters and returns to the
// first page.
func (c *Coordinator[T]) SetExtraParams(extra map[string]string) error {
	return c.update("extra", func(s query.State) query.State {
		return s.WithExtra(extra)
	})
}

// State returns the current view state. It reflects every trigger accepted
// so far, including those whose fetch has not resolved yet.
func (c *Coordinator[T]) State() (query.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return query.State{}, lifecycleErr("state", ErrNotAttached)
	}
	snapshot := c.state
	snapshot.Extra = maps.Clone(c.state.Extra)
	return snapshot, nil
}

// Attached reports whether the coordinator is in an attached lifecycle.
func (c *Coordinator[T]) Attached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Subscribe registers callbacks for published pages and loading changes.
// Either may be nil. The returned function stops delivery; it does not
// cancel a fetch already in progress.
func (c *Coordinator[T]) Subscribe(onPage func(query.Page[T]), onLoading func(bool)) (dispose func()) {
	sub := &subscription[T]{onPage: onPage, onLoading: onLoading}
	sub.active.Store(true)

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s == sub {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					break
				}
			}
		})
	}
}

// Detach ends the lifecycle: the in-flight fetch is cancelled, queued work
// is dropped and every subscription is released. Detach is idempotent and
// never waits for the fetcher.
func (c *Coordinator[T]) Detach() {
	c.mu.Lock()
	s := c.session
	subs := c.subs
	c.session = nil
	c.subs = nil
	c.state = query.State{}
	c.mu.Unlock()

	for _, sub := range subs {
		sub.active.Store(false)
	}
	if s == nil {
		return
	}
	s.stop()
	s.logger.Debug().Msg("coordinator detached")
}

func (c *Coordinator[T]) update(op string, apply func(query.State) query.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return lifecycleErr(op, ErrNotAttached)
	}
	c.state = apply(c.state)
	c.scheduleLocked()
	return nil
}

// scheduleLocked snapshots the request for the current state and queues a
// cycle for it. Holding c.mu keeps queue order equal to trigger order.
func (c *Coordinator[T]) scheduleLocked() {
	params := c.state.Parameters()
	s := c.session
	s.queue.push(func() { s.startCycle(params) })
}

// subscribers returns the live subscriptions of s, or nil when s is no
// longer the attached session.
func (c *Coordinator[T]) subscribers(s *session[T]) []*subscription[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != s {
		return nil
	}
	out := make([]*subscription[T], len(c.subs))
	copy(out, c.subs)
	return out
}

func validatePage(index, size int) error {
	if index < 0 || size < 0 {
		return fmt.Errorf("%w: index %d, size %d", ErrInvalidPageRequest, index, size)
	}
	return nil
}

func validateOrder(order query.SortOrder) error {
	if order != "" && !order.IsValid() {
		return fmt.Errorf("%w: got %q", query.ErrInvalidSortOrder, order)
	}
	return nil
}

func normalizeOrder(order query.SortOrder) query.SortOrder {
	if order == "" {
		return query.SortNone
	}
	return order
}
