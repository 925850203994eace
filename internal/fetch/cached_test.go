package fetch_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/datatable/internal/cache"
	"github.com/rshade/datatable/internal/fetch"
	"github.com/rshade/datatable/internal/query"
)

func countingFetcher(calls *atomic.Int32, delay time.Duration) fetch.Fetcher[item] {
	return fetch.FetcherFunc[item](func(ctx context.Context, p query.Parameters) (query.Page[item], error) {
		calls.Add(1)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return query.Page[item]{}, ctx.Err()
		}
		return query.Page[item]{Items: []item{{ID: p.Offset + 1, Name: p.Keyword}}, Total: 42}, nil
	})
}

func TestCachedFetcher_HitAndMiss(t *testing.T) {
	var calls atomic.Int32
	store := cache.NewMemoryStore(time.Minute)
	cf, err := fetch.NewCachedFetcher(countingFetcher(&calls, 0), store, "items", zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	p := query.NewParameters(10, 0, "name", query.SortAsc, "abc", nil)

	first, err := cf.Fetch(ctx, p)
	require.NoError(t, err)
	second, err := cf.Fetch(ctx, p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 42, second.Total)

	_, err = cf.Fetch(ctx, query.NewParameters(10, 10, "name", query.SortAsc, "abc", nil))
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCachedFetcher_CollapsesConcurrentMisses(t *testing.T) {
	var calls atomic.Int32
	cf, err := fetch.NewCachedFetcher(countingFetcher(&calls, 50*time.Millisecond), cache.NewMemoryStore(time.Minute), "items", zerolog.Nop())
	require.NoError(t, err)

	p := query.NewParameters(10, 0, "", query.SortNone, "", nil)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, fetchErr := cf.Fetch(context.Background(), p)
			assert.NoError(t, fetchErr)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestCachedFetcher_CancelledCaller(t *testing.T) {
	var calls atomic.Int32
	cf, err := fetch.NewCachedFetcher(countingFetcher(&calls, 200*time.Millisecond), cache.NewMemoryStore(time.Minute), "items", zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = cf.Fetch(ctx, query.NewParameters(10, 0, "", query.SortNone, "", nil))
	require.ErrorIs(t, err, context.Canceled)
}

func TestCachedFetcher_ErrorsAreNotCached(t *testing.T) {
	var calls atomic.Int32
	inner := fetch.FetcherFunc[item](func(context.Context, query.Parameters) (query.Page[item], error) {
		calls.Add(1)
		return query.Page[item]{}, errors.New("backend down")
	})
	cf, err := fetch.NewCachedFetcher[item](inner, cache.NewMemoryStore(time.Minute), "items", zerolog.Nop())
	require.NoError(t, err)

	p := query.NewParameters(10, 0, "", query.SortNone, "", nil)
	_, err = cf.Fetch(context.Background(), p)
	require.Error(t, err)
	_, err = cf.Fetch(context.Background(), p)
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCachedFetcher_DisabledStoreAndInvalidate(t *testing.T) {
	var calls atomic.Int32
	store, err := cache.NewFileStore(t.TempDir(), false, time.Minute)
	require.NoError(t, err)
	cf, err := fetch.NewCachedFetcher(countingFetcher(&calls, 0), store, "items", zerolog.Nop())
	require.NoError(t, err)

	p := query.NewParameters(10, 0, "", query.SortNone, "", nil)
	_, err = cf.Fetch(context.Background(), p)
	require.NoError(t, err)
	_, err = cf.Fetch(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	mem := cache.NewMemoryStore(time.Minute)
	cf, err = fetch.NewCachedFetcher(countingFetcher(&calls, 0), mem, "items", zerolog.Nop())
	require.NoError(t, err)
	_, err = cf.Fetch(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1, mem.Len())
	require.NoError(t, cf.Invalidate())
	assert.Equal(t, 0, mem.Len())
}

func TestNewCachedFetcher_NilInner(t *testing.T) {
	_, err := fetch.NewCachedFetcher[item](nil, cache.NewMemoryStore(time.Minute), "items", zerolog.Nop())
	require.ErrorIs(t, err, fetch.ErrNilFetcher)
}
