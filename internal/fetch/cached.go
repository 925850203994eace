package fetch

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rshade/datatable/internal/cache"
	"github.com/rshade/datatable/internal/logging"
	"github.com/rshade/datatable/internal/query"
)

// CachedFetcher serves pages from a cache.Store and falls back to an inner
// Fetcher on a miss. Concurrent misses for the same request share a single
// inner load. Cache failures never fail a fetch; they are logged and the
// inner fetcher is used.
type CachedFetcher[T any] struct {
	inner     Fetcher[T]
	store     cache.Store
	namespace string
	logger    zerolog.Logger
	group     singleflight.Group
}

// NewCachedFetcher wraps inner with store. namespace separates the keys of
// different sources sharing one store, typically the source root URL.
func NewCachedFetcher[T any](inner Fetcher[T], store cache.Store, namespace string, logger zerolog.Logger) (*CachedFetcher[T], error) {
	if inner == nil {
		return nil, ErrNilFetcher
	}
	return &CachedFetcher[T]{
		inner:     inner,
		store:     store,
		namespace: namespace,
		logger:    logging.ComponentLogger(logger, "fetch-cache"),
	}, nil
}

// Fetch returns the cached page for params or loads it through the inner
// fetcher. A cancelled ctx returns immediately; a load already shared with
// other callers keeps running for them.
func (c *CachedFetcher[T]) Fetch(ctx context.Context, params query.Parameters) (query.Page[T], error) {
	key := cache.KeyFor(c.namespace, params)

	if page, ok := c.lookup(key); ok {
		return page, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		page, err := c.inner.Fetch(context.WithoutCancel(ctx), params)
		if err != nil {
			return nil, err
		}
		c.save(key, page)
		return page, nil
	})

	select {
	case <-ctx.Done():
		return query.Page[T]{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return query.Page[T]{}, res.Err
		}
		page, _ := res.Val.(query.Page[T])
		return page, nil
	}
}

// Invalidate drops every cached page. Writes through the CRUD API make
// cached listings stale, so callers invalidate after a successful write.
func (c *CachedFetcher[T]) Invalidate() error {
	if c.store == nil {
		return nil
	}
	return c.store.Clear()
}

func (c *CachedFetcher[T]) lookup(key string) (query.Page[T], bool) {
	if c.store == nil {
		return query.Page[T]{}, false
	}
	entry, err := c.store.Get(key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheNotFound) && !errors.Is(err, cache.ErrCacheDisabled) &&
			!errors.Is(err, cache.ErrCacheExpired) {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return query.Page[T]{}, false
	}

	var page query.Page[T]
	if err := json.Unmarshal(entry.Data, &page); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		_ = c.store.Delete(key)
		return query.Page[T]{}, false
	}
	c.logger.Debug().Str("key", key).Dur("age", entry.Age()).Msg("cache hit")
	return page, true
}

func (c *CachedFetcher[T]) save(key string, page query.Page[T]) {
	if c.store == nil {
		return
	}
	data, err := json.Marshal(page)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := c.store.Set(key, data); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
