package query

import "maps"

// DefaultPageSize is the page size used when a view does not specify one.
const DefaultPageSize = 10

// DefaultPageSizes are the page sizes offered to users by default.
//
//nolint:gochecknoglobals // Read-only default list.
var DefaultPageSizes = []int{5, 10, 25}

// State is the view state a Parameters value is derived from.
//
// State is replaced, never mutated: every With* method returns a new value.
// Sorting, searching and filter changes always return to the first page;
// only a page change keeps sort and search untouched.
type State struct {
	SortField string
	SortOrder SortOrder
	PageIndex int
	PageSize  int
	Keyword   string
	Extra     map[string]string
}

// WithSort returns a copy of s with a new sort and the first page selected.
func (s State) WithSort(field string, order SortOrder) State {
	next := s.clone()
	next.SortField = field
	next.SortOrder = order
	next.PageIndex = 0
	return next
}

// WithPage returns a copy of s showing page index with the given size.
func (s State) WithPage(index, size int) State {
	next := s.clone()
	next.PageIndex = index
	next.PageSize = size
	return next
}

// WithKeyword returns a copy of s with a new keyword and the first page selected.
func (s State) WithKeyword(keyword string) State {
	next := s.clone()
	next.Keyword = keyword
	next.PageIndex = 0
	return next
}

// WithExtra returns a copy of s with new extra parameters and the first page selected.
func (s State) WithExtra(extra map[string]string) State {
	next := s.clone()
	next.Extra = maps.Clone(extra)
	next.PageIndex = 0
	return next
}

// FirstPage returns a copy of s with the first page selected.
func (s State) FirstPage() State {
	next := s.clone()
	next.PageIndex = 0
	return next
}

// Parameters builds the request for the current state.
// Offset is always PageIndex * PageSize.
func (s State) Parameters() Parameters {
	return NewParameters(
		s.PageSize,
		s.PageIndex*s.PageSize,
		s.SortField,
		s.SortOrder,
		s.Keyword,
		s.Extra,
	)
}

func (s State) clone() State {
	next := s
	next.Extra = maps.Clone(s.Extra)
	return next
}
