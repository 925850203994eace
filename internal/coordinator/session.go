package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/datatable/internal/fetch"
	"github.com/rshade/datatable/internal/query"
)

// session is one attached lifecycle. Fields below queue are owned by the
// run goroutine.
type session[T any] struct {
	owner   *Coordinator[T]
	fetcher fetch.Fetcher[T]
	logger  zerolog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	queue   *eventQueue

	gen         uint64
	cancelFetch context.CancelFunc
}

func newSession[T any](owner *Coordinator[T], f fetch.Fetcher[T], logger zerolog.Logger) *session[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &session[T]{
		owner:   owner,
		fetcher: f,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		queue:   newEventQueue(),
	}
}

func (s *session[T]) run() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.queue.signal:
			for _, task := range s.queue.drain() {
				if s.ctx.Err() != nil {
					return
				}
				task()
			}
		}
	}
}

func (s *session[T]) stop() {
	s.queue.close()
	s.cancel()
}

// startCycle issues a new generation for params, superseding any cycle in flight.
func (s *session[T]) startCycle(params query.Parameters) {
	s.gen++
	gen := s.gen

	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelFetch = cancel

	s.owner.observer.CycleStarted(gen)
	s.logger.Debug().
		Uint64("generation", gen).
		Int("limit", params.Limit).
		Int("offset", params.Offset).
		Str("ordering", params.Ordering()).
		Str("keyword", params.Keyword).
		Msg("fetch cycle started")
	s.publishLoading(true)

	started := time.Now()
	go func() {
		page, err := s.invoke(ctx, params)
		elapsed := time.Since(started)
		s.queue.push(func() { s.complete(gen, page, err, elapsed) })
	}()
}

// invoke calls the fetcher, converting a panic into an error.
func (s *session[T]) invoke(ctx context.Context, params query.Parameters) (page query.Page[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetcher panic: %v", r)
		}
	}()
	return s.fetcher.Fetch(ctx, params)
}

func (s *session[T]) complete(gen uint64, page query.Page[T], err error, elapsed time.Duration) {
	if gen != s.gen {
		s.owner.observer.CycleDiscarded(gen)
		s.logger.Debug().
			Uint64("generation", gen).
			Uint64("current", s.gen).
			Msg("discarding superseded fetch result")
		return
	}

	if s.cancelFetch != nil {
		s.cancelFetch()
		s.cancelFetch = nil
	}
	s.owner.observer.CycleCompleted(gen, elapsed, err)

	if err != nil {
		s.logger.Warn().
			Err(err).
			Uint64("generation", gen).
			Dur("duration", elapsed).
			Msg("fetch failed, publishing empty page")
		page = query.EmptyPage[T]()
	} else {
		if page.Items == nil {
			page.Items = []T{}
		}
		s.logger.Debug().
			Uint64("generation", gen).
			Int("items", page.Len()).
			Int("total", page.Total).
			Dur("duration", elapsed).
			Msg("fetch cycle completed")
	}

	s.publishPage(page)
	s.publishLoading(false)
}

func (s *session[T]) publishPage(page query.Page[T]) {
	for _, sub := range s.owner.subscribers(s) {
		if sub.onPage != nil && sub.active.Load() {
			sub.onPage(page)
		}
	}
}

func (s *session[T]) publishLoading(loading bool) {
	for _, sub := range s.owner.subscribers(s) {
		if sub.onLoading != nil && sub.active.Load() {
			sub.onLoading(loading)
		}
	}
}
