package httpx

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxOffset bounds how deep a client can page.
	MaxOffset = 1_000_000
)

// Page is a normalized page request. Page numbers start at 1.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// NormalizePage clamps out-of-range values to the defaults. Page numbers
// past MaxOffset are pulled back so Offset never overflows.
func NormalizePage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if last := MaxOffset/size + 1; number > last {
		number = last
	}
	return Page{Number: number, Size: size}
}

// ParsePage reads page and page_size from the query string. "limit" is
// accepted as an alias for page_size.
func ParsePage(r *http.Request) Page {
	q := r.URL.Query()
	number, _ := strconv.Atoi(q.Get("page"))
	sizeParam := q.Get("page_size")
	if sizeParam == "" {
		sizeParam = q.Get("limit")
	}
	size, _ := strconv.Atoi(sizeParam)
	return NormalizePage(number, size)
}

// PageMeta builds the list metadata returned alongside a page of results.
func PageMeta(p Page, total int) map[string]any {
	totalPages := 0
	if p.Size > 0 {
		totalPages = (total + p.Size - 1) / p.Size
	}
	return map[string]any{
		"page":        p.Number,
		"page_size":   p.Size,
		"total":       total,
		"total_pages": totalPages,
	}
}
