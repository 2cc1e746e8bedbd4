package query

import (
	"net/http"
	"strconv"

	apperrors "srida/pkg/errors"
	httputil "srida/pkg/http"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 100
)

// Page is a 1-indexed page request. A zero or negative number or size
// is a validation error, never silently clamped: the skip arithmetic
// must not see them.
type Page struct {
	Number int
	Size   int
}

func DefaultPage() Page {
	return Page{Number: DefaultPageNumber, Size: DefaultPageSize}
}

// PageFromRequest reads "page" and "limit" query parameters. Absent
// parameters fall back to defaults; present but invalid ones fail.
func PageFromRequest(r *http.Request) (Page, error) {
	page := DefaultPage()
	q := r.URL.Query()

	if s := q.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Page{}, apperrors.InvalidPagination("page must be a number, got: " + s)
		}
		page.Number = n
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Page{}, apperrors.InvalidPagination("limit must be a number, got: " + s)
		}
		page.Size = n
	}

	if err := page.Validate(); err != nil {
		return Page{}, err
	}
	if page.Size > MaxPageSize {
		page.Size = MaxPageSize
	}
	return page, nil
}

func (p Page) Validate() error {
	if p.Number < 1 {
		return apperrors.InvalidPagination("page must be >= 1")
	}
	if p.Size < 1 {
		return apperrors.InvalidPagination("limit must be >= 1")
	}
	return nil
}

func (p Page) Skip() int64 {
	return int64(p.Number-1) * int64(p.Size)
}

func (p Page) Limit() int64 {
	return int64(p.Size)
}

// Meta reports the pagination block for a listing response. A page
// past the end keeps its requested number; only total_pages and
// total_records describe the collection.
func (p Page) Meta(totalRecords int64) httputil.Pagination {
	totalPages := int((totalRecords + int64(p.Size) - 1) / int64(p.Size))
	return httputil.Pagination{
		CurrentPage:  p.Number,
		TotalPages:   totalPages,
		TotalRecords: totalRecords,
	}
}
