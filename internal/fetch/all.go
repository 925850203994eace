package fetch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rshade/datatable/internal/query"
)

// DefaultConcurrency bounds the parallel page loads of FetchAll.
const DefaultConcurrency = 4

// FetchAll loads every page of the listing described by params, pageSize
// items at a time. The first page is fetched alone to learn the total; the
// remaining pages are fetched concurrently and concatenated in order.
func FetchAll[T any](ctx context.Context, f Fetcher[T], params query.Parameters, pageSize, concurrency int) ([]T, error) {
	if f == nil {
		return nil, ErrNilFetcher
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", query.ErrInvalidLimit, pageSize)
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	pageParams := func(offset int) query.Parameters {
		return query.NewParameters(pageSize, offset, params.SortField, params.SortOrder, params.Keyword, params.Extra())
	}

	first, err := f.Fetch(ctx, pageParams(0))
	if err != nil {
		return nil, fmt.Errorf("fetching page 1: %w", err)
	}
	if first.Total <= first.Len() || first.Len() == 0 {
		return first.Items, nil
	}

	pages := (first.Total + pageSize - 1) / pageSize
	results := make([][]T, pages)
	results[0] = first.Items

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := 1; i < pages; i++ {
		g.Go(func() error {
			page, err := f.Fetch(gctx, pageParams(i*pageSize))
			if err != nil {
				return fmt.Errorf("fetching page %d: %w", i+1, err)
			}
			results[i] = page.Items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]T, 0, first.Total)
	for _, chunk := range results {
		items = append(items, chunk...)
	}
	return items, nil
}
