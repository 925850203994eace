package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPage is returned when a list response is neither an envelope nor an array.
var ErrMalformedPage = errors.New("list response is neither a results envelope nor an array")

// Page is the result of one fetch.
type Page[T any] struct {
	// Items holds the returned rows in backend order.
	Items []T `json:"items" yaml:"items"`

	// Total is the backend-reported count when paging is active,
	// otherwise len(Items).
	Total int `json:"total" yaml:"total"`
}

// EmptyPage returns a page with no items and a zero total.
func EmptyPage[T any]() Page[T] {
	return Page[T]{Items: []T{}, Total: 0}
}

// Len returns the number of items on the page.
func (p Page[T]) Len() int {
	return len(p.Items)
}

// Envelope is the paged list response shape: {"count": n, "results": [...]}.
type Envelope[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

// FromEnvelope converts an envelope into a Page. When paging is not active
// the reported count is ignored and the total is the number of results.
func FromEnvelope[T any](env Envelope[T], limit int) Page[T] {
	items := env.Results
	if items == nil {
		items = []T{}
	}
	if limit > 0 {
		return Page[T]{Items: items, Total: env.Count}
	}
	return Page[T]{Items: items, Total: len(items)}
}

// FromSlice converts a bare item sequence into a Page.
func FromSlice[T any](items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: len(items)}
}

// DecodePage decodes a raw list response.
//
// Backends answer a paged request with an envelope and an unpaged one with
// a bare array; both shapes are accepted:
//   - envelope with limit > 0: Total is the reported count
//   - envelope with limit <= 0: Total is the number of results
//   - array: Total is the array length
func DecodePage[T any](raw []byte, limit int) (Page[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Page[T]{}, ErrMalformedPage
	}

	switch trimmed[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Page[T]{}, fmt.Errorf("decoding list array: %w", err)
		}
		return FromSlice(items), nil
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return Page[T]{}, fmt.Errorf("decoding list envelope: %w", err)
		}
		if _, ok := envelope["results"]; !ok {
			return Page[T]{}, ErrMalformedPage
		}
		var env Envelope[T]
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return Page[T]{}, fmt.Errorf("decoding list envelope: %w", err)
		}
		return FromEnvelope(env, limit), nil
	default:
		return Page[T]{}, ErrMalformedPage
	}
}
