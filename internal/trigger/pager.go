package trigger

import (
	"slices"
	"sync"

	"github.com/rshade/datatable/internal/query"
)

// Pager emits page triggers within the bounds of the last published total.
// Moves that would leave the valid range are ignored.
type Pager struct {
	sink  func(index, size int) error
	sizes []int

	mu    sync.Mutex
	index int
	size  int
	total int
}

// NewPager creates a pager at the first page. sizes lists the selectable
// page sizes; when empty query.DefaultPageSizes is used.
func NewPager(sink func(index, size int) error, size int, sizes []int) *Pager {
	if len(sizes) == 0 {
		sizes = query.DefaultPageSizes
	}
	sizes = slices.Clone(sizes)
	slices.Sort(sizes)
	if size <= 0 {
		size = query.DefaultPageSize
	}
	return &Pager{sink: sink, sizes: slices.Compact(sizes), size: size}
}

// Observe records the total of the latest published page.
func (p *Pager) Observe(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
}

// Reset moves back to the first page without emitting; the coordinator
// already does this on sort and search.
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.index = 0
}

// ResetOn wraps a keyword sink so the pager returns to the first page
// before each keyword is forwarded.
func (p *Pager) ResetOn(sink func(string) error) func(string) error {
	return func(keyword string) error {
		p.Reset()
		return sink(keyword)
	}
}

// Sync aligns the pager with the coordinator's current page without emitting.
func (p *Pager) Sync(index, size int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index >= 0 {
		p.index = index
	}
	if size > 0 {
		p.size = size
	}
}

// Meta returns pager metadata for the current position.
func (p *Pager) Meta() query.Meta {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.metaLocked()
}

// Next moves one page forward.
func (p *Pager) Next() error {
	return p.move(func(m query.Meta, index int) int {
		if !m.HasNext {
			return index
		}
		return index + 1
	})
}

// Prev moves one page back.
func (p *Pager) Prev() error {
	return p.move(func(_ query.Meta, index int) int {
		return max(index-1, 0)
	})
}

// First moves to the first page.
func (p *Pager) First() error {
	return p.move(func(query.Meta, int) int { return 0 })
}

// Last moves to the last page.
func (p *Pager) Last() error {
	return p.move(func(m query.Meta, _ int) int { return m.LastPageIndex() })
}

// SetSize changes the page size, keeping the first visible row on screen.
func (p *Pager) SetSize(size int) error {
	if size <= 0 {
		return nil
	}
	p.mu.Lock()
	if size == p.size {
		p.mu.Unlock()
		return nil
	}
	p.index = p.index * p.size / size
	p.size = size
	index := p.index
	p.mu.Unlock()

	return p.sink(index, size)
}

// Grow switches to the next larger configured page size.
func (p *Pager) Grow() error {
	p.mu.Lock()
	next := p.size
	for _, s := range p.sizes {
		if s > p.size {
			next = s
			break
		}
	}
	p.mu.Unlock()
	return p.SetSize(next)
}

// Shrink switches to the next smaller configured page size.
func (p *Pager) Shrink() error {
	p.mu.Lock()
	next := p.size
	for i := len(p.sizes) - 1; i >= 0; i-- {
		if p.sizes[i] < p.size {
			next = p.sizes[i]
			break
		}
	}
	p.mu.Unlock()
	return p.SetSize(next)
}

func (p *Pager) move(target func(m query.Meta, index int) int) error {
	p.mu.Lock()
	next := target(p.metaLocked(), p.index)
	if next == p.index {
		p.mu.Unlock()
		return nil
	}
	p.index = next
	size := p.size
	p.mu.Unlock()

	return p.sink(next, size)
}

func (p *Pager) metaLocked() query.Meta {
	return query.NewMeta(query.NewParameters(p.size, p.index*p.size, "", query.SortNone, "", nil), p.total)
}
