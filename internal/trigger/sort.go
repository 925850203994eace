package trigger

import (
	"sync"

	"github.com/rshade/datatable/internal/query"
)

// SortCycler emits sort triggers the way a sortable table header does:
// clicking the active column cycles asc, desc, none; clicking another
// column starts it at asc.
type SortCycler struct {
	sink func(field string, order query.SortOrder) error

	mu    sync.Mutex
	field string
	order query.SortOrder
}

// NewSortCycler creates a cycler seeded with the initial sort.
func NewSortCycler(sink func(string, query.SortOrder) error, field string, order query.SortOrder) *SortCycler {
	if order == "" {
		order = query.SortNone
	}
	return &SortCycler{sink: sink, field: field, order: order}
}

// Toggle advances the sort for field and emits the result.
func (s *SortCycler) Toggle(field string) error {
	s.mu.Lock()
	if field != s.field {
		s.field = field
		s.order = query.SortAsc
	} else {
		s.order = nextOrder(s.order)
	}
	field, order := s.field, s.order
	s.mu.Unlock()

	return s.sink(field, order)
}

// Current returns the active column and its order.
func (s *SortCycler) Current() (string, query.SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.field, s.order
}

func nextOrder(o query.SortOrder) query.SortOrder {
	switch o {
	case query.SortAsc:
		return query.SortDesc
	case query.SortDesc:
		return query.SortNone
	default:
		return query.SortAsc
	}
}
