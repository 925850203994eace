package query

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"strconv"
	"strings"
)

// Query-string keys understood by list backends.
const (
	KeyLimit    = "limit"
	KeyOffset   = "offset"
	KeySearch   = "search"
	KeyOrdering = "ordering"
)

// descPrefix marks a descending ordering value ("-name").
const descPrefix = "-"

// sortPartsMax is the maximum number of parts in a sort string (field:order).
const sortPartsMax = 2

// Common validation errors.
var (
	ErrInvalidLimit      = errors.New("limit must be non-negative")
	ErrInvalidOffset     = errors.New("offset must be non-negative")
	ErrInvalidSortOrder  = errors.New("sort order must be 'asc', 'desc' or 'none'")
	ErrInvalidSortFormat = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'name:desc')")
	ErrEmptySortField    = errors.New("sort field cannot be empty")
)

// SortOrder is the direction of a sort.
type SortOrder string

// Sort directions. SortNone means the column is not actively sorted.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
	SortNone SortOrder = "none"
)

// IsValid reports whether o is one of the known sort orders.
func (o SortOrder) IsValid() bool {
	switch o {
	case SortAsc, SortDesc, SortNone:
		return true
	default:
		return false
	}
}

// ParseSortOrder parses a sort direction. The empty string maps to SortNone.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(SortNone):
		return SortNone, nil
	case string(SortAsc):
		return SortAsc, nil
	case string(SortDesc):
		return SortDesc, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, s)
	}
}

// ParseSort parses a sort string in the format "field" or "field:order".
// Examples: "name", "name:desc", "email:asc".
// An empty string means "no sort" and returns an empty field with SortNone.
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func ParseSort(sortStr string) (field string, order SortOrder, err error) {
	if strings.TrimSpace(sortStr) == "" {
		return "", SortNone, nil
	}

	parts := strings.Split(sortStr, ":")
	switch len(parts) {
	case 1:
		field = strings.TrimSpace(parts[0])
		order = SortAsc
	case sortPartsMax:
		field = strings.TrimSpace(parts[0])
		order, err = ParseSortOrder(parts[1])
		if err != nil {
			return "", "", err
		}
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, sortStr)
	}

	if field == "" {
		return "", "", ErrEmptySortField
	}

	return field, order, nil
}

// Parameters describes one list fetch request.
//
// A Parameters value is a snapshot: it is built fresh for every fetch cycle
// and never modified afterwards. The extra parameter map is private and only
// handed out as a copy.
type Parameters struct {
	// Limit is the page size; 0 disables paging.
	Limit int

	// Offset is the index of the first requested item.
	Offset int

	// SortField is the field to order by; empty means no ordering.
	SortField string

	// SortOrder is the direction applied to SortField.
	SortOrder SortOrder

	// Keyword is the search keyword; empty means no search.
	Keyword string

	extra map[string]string
}

// NewParameters builds a Parameters value, copying extra.
func NewParameters(limit, offset int, sortField string, order SortOrder, keyword string, extra map[string]string) Parameters {
	if order == "" {
		order = SortNone
	}
	return Parameters{
		Limit:     limit,
		Offset:    offset,
		SortField: sortField,
		SortOrder: order,
		Keyword:   keyword,
		extra:     maps.Clone(extra),
	}
}

// Extra returns a copy of the extra query parameters.
func (p Parameters) Extra() map[string]string {
	if p.extra == nil {
		return map[string]string{}
	}
	return maps.Clone(p.extra)
}

// Validate checks that the parameters can be sent to a backend.
func (p Parameters) Validate() error {
	if p.Limit < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidLimit, p.Limit)
	}
	if p.Offset < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidOffset, p.Offset)
	}
	if p.SortOrder != "" && !p.SortOrder.IsValid() {
		return fmt.Errorf("%w: got %q", ErrInvalidSortOrder, p.SortOrder)
	}
	return nil
}

// IsPaged reports whether paging is active (Limit > 0).
func (p Parameters) IsPaged() bool {
	return p.Limit > 0
}

// Ordering returns the backend ordering value: "-field" for descending,
// "field" otherwise, or "" when no sort field is set.
func (p Parameters) Ordering() string {
	if p.SortField == "" {
		return ""
	}
	if p.SortOrder == SortDesc {
		return descPrefix + p.SortField
	}
	return p.SortField
}

// Values encodes the parameters as a query string.
// Extra parameters are applied first so the standard keys always win.
func (p Parameters) Values() url.Values {
	values := url.Values{}
	for k, v := range p.extra {
		values.Set(k, v)
	}

	if p.Limit > 0 {
		values.Set(KeyLimit, strconv.Itoa(p.Limit))
		values.Set(KeyOffset, strconv.Itoa(p.Offset))
	}

	if p.Keyword != "" {
		values.Set(KeySearch, p.Keyword)
	}

	if ordering := p.Ordering(); ordering != "" {
		values.Set(KeyOrdering, ordering)
	}

	return values
}

// ParseOrdering splits a backend ordering value into field and order.
func ParseOrdering(ordering string) (string, SortOrder) {
	ordering = strings.TrimSpace(ordering)
	if ordering == "" {
		return "", SortNone
	}
	if field, ok := strings.CutPrefix(ordering, descPrefix); ok {
		return field, SortDesc
	}
	return ordering, SortAsc
}

// Equal reports whether two parameter sets describe the same request.
func (p Parameters) Equal(other Parameters) bool {
	return p.Limit == other.Limit &&
		p.Offset == other.Offset &&
		p.SortField == other.SortField &&
		p.SortOrder == other.SortOrder &&
		p.Keyword == other.Keyword &&
		maps.Equal(p.extra, other.extra)
}
