package query

import "math"

// DefaultWindowSize is the number of page links a pager shows at once.
const DefaultWindowSize = 5

// halfWindowDivisor is used to center the page window on the current page.
const halfWindowDivisor = 2

// Meta contains pager metadata for a page of results.
type Meta struct {
	CurrentPage int  `json:"current_page" yaml:"current_page"`
	PageSize    int  `json:"page_size"    yaml:"page_size"`
	TotalPages  int  `json:"total_pages"  yaml:"total_pages"`
	TotalItems  int  `json:"total_items"  yaml:"total_items"`
	HasPrevious bool `json:"has_previous" yaml:"has_previous"`
	HasNext     bool `json:"has_next"     yaml:"has_next"`
}

// NewMeta creates pager metadata from the request parameters and the total count.
// CurrentPage is 1-based. Unpaged requests are a single page.
func NewMeta(params Parameters, totalCount int) Meta {
	pageSize := params.Limit
	if pageSize <= 0 {
		pageSize = totalCount
	}

	currentPage := 1
	if pageSize > 0 {
		currentPage = (params.Offset / pageSize) + 1
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = int(math.Ceil(float64(totalCount) / float64(pageSize)))
	}

	return Meta{
		CurrentPage: currentPage,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		TotalItems:  totalCount,
		HasPrevious: currentPage > 1,
		HasNext:     currentPage < totalPages,
	}
}

// LastPageIndex returns the 0-based index of the last page, or 0 when empty.
func (m Meta) LastPageIndex() int {
	if m.TotalPages <= 0 {
		return 0
	}
	return m.TotalPages - 1
}

// Window returns up to size 1-based page numbers around the current page,
// for rendering a numbered pager. A size <= 0 uses DefaultWindowSize.
func (m Meta) Window(size int) []int {
	if size <= 0 {
		size = DefaultWindowSize
	}
	if m.TotalPages <= 0 {
		return []int{}
	}
	if size > m.TotalPages {
		size = m.TotalPages
	}

	start := m.CurrentPage - size/halfWindowDivisor
	if start < 1 {
		start = 1
	}
	if end := start + size - 1; end > m.TotalPages {
		start = m.TotalPages - size + 1
	}

	pages := make([]int, size)
	for i := range pages {
		pages[i] = start + i
	}
	return pages
}
