package shared

// Filter carries the list-endpoint query options repositories apply:
// pagination, sort order and an optional free-text search. Filters
// holds column/value pairs; repositories whitelist the keys they
// accept.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// DefaultFilter lists newest first, 20 per page.
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}

// Offset converts page/page size into a row offset, treating pages
// below 1 as the first page.
func (f Filter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.PageSize
}
