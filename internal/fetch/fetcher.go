package fetch

import (
	"context"

	"github.com/rshade/datatable/internal/query"
)

// Fetcher produces one page of T for a request.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, params query.Parameters) (query.Page[T], error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc[T any] func(ctx context.Context, params query.Parameters) (query.Page[T], error)

// Fetch calls f.
func (f FetcherFunc[T]) Fetch(ctx context.Context, params query.Parameters) (query.Page[T], error) {
	return f(ctx, params)
}
