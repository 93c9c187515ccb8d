// Package page holds offset pagination helpers shared by listing operations.
package page

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Request is a 1-based page window.
type Request struct {
	Page     int
	PageSize int
}

// Normalize applies defaults and caps the page size.
func (r Request) Normalize() Request {
	if r.Page < 1 {
		r.Page = DefaultPage
	}
	if r.PageSize < 1 {
		r.PageSize = DefaultPageSize
	}
	if r.PageSize > MaxPageSize {
		r.PageSize = MaxPageSize
	}
	return r
}

// Offset is the number of rows skipped before the window.
func (r Request) Offset() int {
	n := r.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Limit is the window size.
func (r Request) Limit() int {
	return r.Normalize().PageSize
}

// Result is one page of rows plus the size of the whole filtered set.
type Result[T any] struct {
	Data       []T
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// NewResult assembles a page result for the given request.
func NewResult[T any](data []T, total int64, req Request) Result[T] {
	req = req.Normalize()
	if data == nil {
		data = []T{}
	}
	pages := 0
	if total > 0 {
		pages = int((total + int64(req.PageSize) - 1) / int64(req.PageSize))
	}
	return Result[T]{
		Data:       data,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: pages,
	}
}

// Window slices rows to the request window; used by in-memory adapters.
func Window[T any](rows []T, req Request) []T {
	offset := req.Offset()
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + req.Limit()
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}
