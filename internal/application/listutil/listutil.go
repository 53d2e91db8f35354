package listutil

import (
	"net/url"
	"strconv"
	"strings"
)

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 0-based page index
	PerPage int // rows per page
}

// FilterParams carries search and filter parameters.
type FilterParams struct {
	Search  string // free-text search query
	AdminID string // exact-match admin filter
}

// ListParams combines all list view parameters.
type ListParams struct {
	PageParams
	FilterParams
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int // current page (0-based)
	PerPage    int // rows per page
	Total      int // total matching rows
	TotalPages int // ceil(Total / PerPage), at least 1
}

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 10

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 20, 50, 100}

// ParsePageParams extracts page and per_page from URL query values.
// PRE: none
// POST: returns valid PageParams with defaults applied
func ParsePageParams(q url.Values) PageParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 0 {
		page = 0
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !isValidPerPage(perPage) {
		perPage = DefaultPerPage
	}
	return PageParams{Page: page, PerPage: perPage}
}

// ParseFilterParams extracts the search text and admin filter.
// PRE: none
// POST: returns FilterParams with surrounding whitespace trimmed
func ParseFilterParams(q url.Values) FilterParams {
	return FilterParams{
		Search:  strings.TrimSpace(q.Get("q")),
		AdminID: strings.TrimSpace(q.Get("admin")),
	}
}

// ParseListParams parses all list parameters from URL query values. When the
// search text or admin filter differs from the previously applied value
// (prev_q, prev_admin) the page index resets to 0.
// PRE: none
// POST: returns ListParams; Page is 0 whenever a filter changed
func ParseListParams(q url.Values) ListParams {
	lp := ListParams{
		PageParams:   ParsePageParams(q),
		FilterParams: ParseFilterParams(q),
	}
	_, hasPrevQ := q["prev_q"]
	_, hasPrevAdmin := q["prev_admin"]
	if (hasPrevQ && strings.TrimSpace(q.Get("prev_q")) != lp.Search) ||
		(hasPrevAdmin && strings.TrimSpace(q.Get("prev_admin")) != lp.AdminID) {
		lp.Page = 0
	}
	return lp
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: returns PageInfo with TotalPages computed; Page clamped to [0, TotalPages-1]
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if total < 0 {
		total = 0
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages-1 {
		page = totalPages - 1
	}
	if page < 0 {
		page = 0
	}
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the SQL OFFSET for the current page.
// PRE: PageInfo is valid
// POST: Returns Page * PerPage
func (p PageInfo) Offset() int {
	return p.Page * p.PerPage
}

// HasPrev reports whether a previous page exists.
// POST: false exactly when Page is 0
func (p PageInfo) HasPrev() bool {
	return p.Page > 0
}

// HasNext reports whether a next page exists.
// POST: false exactly when Page is the last page, ceil(Total/PerPage)-1
func (p PageInfo) HasNext() bool {
	return p.Page < p.TotalPages-1
}

// PrevPage returns the index of the previous page.
func (p PageInfo) PrevPage() int {
	if !p.HasPrev() {
		return 0
	}
	return p.Page - 1
}

// NextPage returns the index of the next page.
func (p PageInfo) NextPage() int {
	if !p.HasNext() {
		return p.Page
	}
	return p.Page + 1
}

// StartRow returns the 1-indexed first row number on the current page.
// PRE: PageInfo is valid
// POST: Returns 0 if Total is 0, otherwise Offset+1
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row number on the current page.
// PRE: PageInfo is valid
// POST: Returns min(Offset+PerPage, Total)
func (p PageInfo) EndRow() int {
	end := p.Offset() + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return end
}

// PageNumbers returns the 0-based page indexes to display in pagination controls.
// Shows at most 5 pages centered around the current page.
// PRE: PageInfo is valid
// POST: Returns slice of at most 5 page indexes centered on current page
func (p PageInfo) PageNumbers() []int {
	const maxButtons = 5
	start := p.Page - maxButtons/2
	if start < 0 {
		start = 0
	}
	end := start + maxButtons - 1
	if end > p.TotalPages-1 {
		end = p.TotalPages - 1
		start = end - maxButtons + 1
		if start < 0 {
			start = 0
		}
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// ShowPagination returns true if pagination controls should be displayed.
// PRE: PageInfo is valid
// POST: Returns true if Total > PerPage
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}

func isValidPerPage(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}
