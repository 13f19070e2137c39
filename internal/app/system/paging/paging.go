// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the number of posts shown on every feed page.
const PageSize = 10

// Page describes one window of an ordered collection. Numbers are 1-based.
type Page struct {
	Number     int
	TotalPages int
	Total      int64

	HasPrev    bool
	HasNext    bool
	PrevNumber int
	NextNumber int

	// Offset and Limit are what the store should skip and fetch.
	Offset int64
	Limit  int64
}

// ParsePage extracts the "page" query parameter. Missing or non-numeric
// values mean page 1; range checking happens in Paginate.
func ParsePage(r *http.Request) int {
	s := query.Get(r, "page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return n
}

// TotalPages returns ceil(total/PageSize), with an empty collection still
// having a single (empty) page.
func TotalPages(total int64) int {
	if total <= 0 {
		return 1
	}
	return int((total + PageSize - 1) / PageSize)
}

// Paginate computes the window for a collection of total items. Requested
// page numbers outside [1, TotalPages] are clamped to the nearest valid page.
func Paginate(total int64, requested int) Page {
	pages := TotalPages(total)
	n := requested
	if n < 1 {
		n = 1
	}
	if n > pages {
		n = pages
	}

	p := Page{
		Number:     n,
		TotalPages: pages,
		Total:      total,
		HasPrev:    n > 1,
		HasNext:    n < pages,
		Offset:     int64(n-1) * PageSize,
		Limit:      PageSize,
	}
	if p.HasPrev {
		p.PrevNumber = n - 1
	}
	if p.HasNext {
		p.NextNumber = n + 1
	}
	return p
}

// ItemsOn reports how many items the page holds.
func (p Page) ItemsOn() int {
	rest := p.Total - p.Offset
	if rest <= 0 {
		return 0
	}
	if rest > p.Limit {
		return int(p.Limit)
	}
	return int(rest)
}

// Numbers lists every page number, for rendering a pager.
func (p Page) Numbers() []int {
	out := make([]int, p.TotalPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
