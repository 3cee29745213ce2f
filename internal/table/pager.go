package table

// PageSizes are the page sizes the size toggle cycles through.
var PageSizes = []int{5, 10, 25}

// DefaultPageSize is used when no positive size is configured.
const DefaultPageSize = 10

// Pager tracks the current zero-based page and the page size.
type Pager struct {
	Page int
	Size int
}

// NewPager creates a pager on the first page.
func NewPager(size int) Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return Pager{Size: size}
}

// Pages returns how many pages total rows span; at least one.
func (p Pager) Pages(total int) int {
	if total <= 0 || p.Size <= 0 {
		return 1
	}
	return (total + p.Size - 1) / p.Size
}

// Next advances one page if there is one and reports whether it moved.
func (p *Pager) Next(total int) bool {
	if p.Page+1 >= p.Pages(total) {
		return false
	}
	p.Page++
	return true
}

// Prev goes back one page if possible and reports whether it moved.
func (p *Pager) Prev() bool {
	if p.Page == 0 {
		return false
	}
	p.Page--
	return true
}

// SetSize changes the page size and returns to the first page.
func (p *Pager) SetSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	p.Size = size
	p.Page = 0
}

// CycleSize switches to the next entry of PageSizes.
func (p *Pager) CycleSize() {
	for i, s := range PageSizes {
		if s == p.Size {
			p.SetSize(PageSizes[(i+1)%len(PageSizes)])
			return
		}
	}
	p.SetSize(PageSizes[0])
}

// Clamp moves the page back inside the valid range for total rows.
func (p *Pager) Clamp(total int) {
	if last := p.Pages(total) - 1; p.Page > last {
		p.Page = last
	}
	if p.Page < 0 {
		p.Page = 0
	}
}

// Bounds returns the half-open row range [start, end) of the current page.
func (p Pager) Bounds(total int) (start, end int) {
	start = p.Page * p.Size
	if start > total {
		start = total
	}
	end = start + p.Size
	if end > total {
		end = total
	}
	return start, end
}

// EmptyRows returns how many blank rows pad a partially filled page so the
// table keeps its height while paging. The first page is never padded.
func (p Pager) EmptyRows(total int) int {
	if p.Page == 0 {
		return 0
	}
	start, end := p.Bounds(total)
	return p.Size - (end - start)
}
