package services

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest selects one page of a listing. Zero values select the first page of default size.
type PageRequest struct {
	Page     int
	PageSize int
}

func (r PageRequest) normalize() PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 || r.PageSize > MaxPageSize {
		r.PageSize = DefaultPageSize
	}
	return r
}

func (r PageRequest) offset() int {
	return (r.Page - 1) * r.PageSize
}

// Page is one slice of a listing together with the total number of rows.
type Page[T any] struct {
	Items      []T
	Count      int64
	Page       int
	PageSize   int
	TotalPages int
}

func newPage[T any](items []T, count int64, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := int((count + int64(req.PageSize) - 1) / int64(req.PageSize))
	return Page[T]{
		Items:      items,
		Count:      count,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: pages,
	}
}
