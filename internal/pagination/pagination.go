// Package pagination splits an ordered result set into fixed-size pages.
//
// Requests for pages outside the valid range are clamped to the nearest
// valid page instead of failing, so a stale "?page=7" link still lands
// somewhere sensible.
package pagination

import "strconv"

// DefaultPerPage is the page size used by every feed.
const DefaultPerPage = 10

// Page describes one page of a paginated sequence. Number is 1-indexed.
type Page struct {
	Number   int
	NumPages int
	Total    int64
	PerPage  int
}

// Paginator computes pages over a sequence of known length.
type Paginator struct {
	total   int64
	perPage int
}

// New returns a Paginator for total items split into pages of perPage.
// A non-positive perPage falls back to DefaultPerPage.
func New(total int64, perPage int) *Paginator {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if total < 0 {
		total = 0
	}
	return &Paginator{total: total, perPage: perPage}
}

// NumPages is ceil(total/perPage), never less than one: an empty sequence
// still has a single empty page.
func (p *Paginator) NumPages() int {
	if p.total == 0 {
		return 1
	}
	return int((p.total + int64(p.perPage) - 1) / int64(p.perPage))
}

// Page returns page n clamped into [1, NumPages].
func (p *Paginator) Page(n int) Page {
	last := p.NumPages()
	if n < 1 {
		n = 1
	}
	if n > last {
		n = last
	}
	return Page{Number: n, NumPages: last, Total: p.total, PerPage: p.perPage}
}

// GetPage parses a raw query value; anything that is not an integer
// yields the first page.
func (p *Paginator) GetPage(raw string) Page {
	n, err := strconv.Atoi(raw)
	if err != nil {
		n = 1
	}
	return p.Page(n)
}

// Offset is the index of the first item on the page.
func (pg Page) Offset() int {
	return (pg.Number - 1) * pg.PerPage
}

// Limit is the page size.
func (pg Page) Limit() int {
	return pg.PerPage
}

// StartIndex is the 1-based index of the first item on the page, 0 when empty.
func (pg Page) StartIndex() int64 {
	if pg.Total == 0 {
		return 0
	}
	return int64(pg.Offset()) + 1
}

// EndIndex is the 1-based index of the last item on the page.
func (pg Page) EndIndex() int64 {
	end := int64(pg.Offset() + pg.PerPage)
	if end > pg.Total {
		end = pg.Total
	}
	return end
}

// Len is the number of items on the page.
func (pg Page) Len() int {
	if pg.Total == 0 {
		return 0
	}
	return int(pg.EndIndex() - pg.StartIndex() + 1)
}

func (pg Page) HasNext() bool     { return pg.Number < pg.NumPages }
func (pg Page) HasPrevious() bool { return pg.Number > 1 }
func (pg Page) HasOtherPages() bool {
	return pg.HasNext() || pg.HasPrevious()
}
func (pg Page) NextNumber() int     { return pg.Number + 1 }
func (pg Page) PreviousNumber() int { return pg.Number - 1 }

// Numbers lists every page number, for rendering page links.
func (pg Page) Numbers() []int {
	nums := make([]int, pg.NumPages)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

// Slice returns the part of an ordered in-memory sequence that falls on pg.
func Slice[T any](items []T, pg Page) []T {
	start := pg.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + pg.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
