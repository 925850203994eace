package server

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/fvbommel/sortorder"

	"github.com/rshade/datatable/internal/query"
)

// Store errors.
var (
	ErrItemNotFound       = errors.New("item not found")
	ErrUnknownOrdering    = errors.New("unknown ordering field")
	ErrInvalidItem        = errors.New("item name is required")
	ErrInvalidActiveValue = errors.New("active filter must be 'true' or 'false'")
)

// Item is the demo resource.
type Item struct {
	ID     int    `json:"id"     yaml:"id"`
	Name   string `json:"name"   yaml:"name"`
	Email  string `json:"email"  yaml:"email"`
	City   string `json:"city"   yaml:"city"`
	Active bool   `json:"active" yaml:"active"`
}

// OrderingFields lists the fields accepted by the ordering parameter.
//
//nolint:gochecknoglobals // Read-only lookup list.
var OrderingFields = []string{"id", "name", "email", "city", "active"}

func (it Item) field(name string) string {
	switch name {
	case "id":
		return strconv.Itoa(it.ID)
	case "name":
		return it.Name
	case "email":
		return it.Email
	case "city":
		return it.City
	case "active":
		return strconv.FormatBool(it.Active)
	default:
		return ""
	}
}

func (it Item) matches(keyword string) bool {
	for _, v := range []string{it.Name, it.Email, it.City} {
		if strings.Contains(strings.ToLower(v), keyword) {
			return true
		}
	}
	return false
}

// Store is an in-memory item collection safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	items  map[int]Item
	nextID int
}

// NewStore creates a store holding items. Items without an ID get one.
func NewStore(items []Item) *Store {
	s := &Store{items: make(map[int]Item, len(items)), nextID: 1}
	for _, it := range items {
		if it.ID <= 0 {
			it.ID = s.nextID
		}
		s.items[it.ID] = it
		if it.ID >= s.nextID {
			s.nextID = it.ID + 1
		}
	}
	return s
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// List filters, orders and slices the collection for params. The total is
// the number of matching items before slicing.
func (s *Store) List(params query.Parameters) ([]Item, int, error) {
	field, order := query.ParseOrdering(params.Ordering())
	if field != "" && !slices.Contains(OrderingFields, field) {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownOrdering, field)
	}

	active, filterActive, err := activeFilter(params.Extra())
	if err != nil {
		return nil, 0, err
	}

	keyword := strings.ToLower(strings.TrimSpace(params.Keyword))

	s.mu.RLock()
	matched := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		if keyword != "" && !it.matches(keyword) {
			continue
		}
		if filterActive && it.Active != active {
			continue
		}
		matched = append(matched, it)
	}
	s.mu.RUnlock()

	slices.SortStableFunc(matched, func(a, b Item) int {
		return compareItems(a, b, field, order)
	})

	total := len(matched)
	if params.Limit <= 0 {
		return matched, total, nil
	}
	start := min(params.Offset, total)
	end := min(start+params.Limit, total)
	return matched[start:end], total, nil
}

// Get returns the item with id.
func (s *Store) Get(id int) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	return it, nil
}

// Create stores it under a fresh ID.
func (s *Store) Create(it Item) (Item, error) {
	if strings.TrimSpace(it.Name) == "" {
		return Item{}, ErrInvalidItem
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it.ID = s.nextID
	s.nextID++
	s.items[it.ID] = it
	return it, nil
}

// Update replaces the item with id.
func (s *Store) Update(id int, it Item) (Item, error) {
	if strings.TrimSpace(it.Name) == "" {
		return Item{}, ErrInvalidItem
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return Item{}, fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	it.ID = id
	s.items[id] = it
	return it, nil
}

// Delete removes the item with id.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	delete(s.items, id)
	return nil
}

// compareItems orders by field with natural string ordering, falling back
// to ID so paging is stable.
func compareItems(a, b Item, field string, order query.SortOrder) int {
	if field != "" {
		va, vb := a.field(field), b.field(field)
		if va != vb {
			less := sortorder.NaturalLess(va, vb)
			if order == query.SortDesc {
				less = !less
			}
			if less {
				return -1
			}
			return 1
		}
	}
	return a.ID - b.ID
}

func activeFilter(extra map[string]string) (value, ok bool, err error) {
	raw, present := extra["active"]
	if !present || raw == "" {
		return false, false, nil
	}
	switch strings.ToLower(raw) {
	case "true", "1":
		return true, true, nil
	case "false", "0":
		return false, true, nil
	default:
		return false, false, fmt.Errorf("%w: got %q", ErrInvalidActiveValue, raw)
	}
}
