// Package listview implements the shared search and pagination state of
// admin list pages. The state is derived from query parameters on every
// request; nothing is kept server side between requests.
package listview

// DefaultPageSize is the default number of items per page.
const DefaultPageSize = 10

// State holds the search query and pagination position of a list page.
type State struct {
	Query    string
	Page     int
	PageSize int
}

// NewState builds a list state from raw query parameter values, applying
// defaults and lower bounds.
func NewState(query string, page, pageSize int) State {
	if page < 1 {
		page = 1
	}

	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	return State{
		Query:    query,
		Page:     page,
		PageSize: pageSize,
	}
}

// ApplySearch sets a new query. A changed query resets the position to the
// first page so the results are never scoped to a stale page index.
func (s State) ApplySearch(query string) State {
	if query != s.Query {
		s.Query = query
		s.Page = 1
	}

	return s
}

// PageData holds one page of items plus the numbers the template needs to
// render pager controls.
type PageData[T any] struct {
	Items       []T
	CurrentPage int
	PageSize    int
	TotalItems  int
	TotalPages  int
	HasPrevPage bool
	HasNextPage bool
	PrevPage    int
	NextPage    int
	Query       string
}

// Paginate slices items down to the requested page. A page beyond the end,
// for example after a search shrank the result set, is clamped to the last
// valid page instead of rendering empty.
func Paginate[T any](items []T, s State) PageData[T] {
	totalItems := len(items)

	totalPages := (totalItems + s.PageSize - 1) / s.PageSize
	if totalPages < 1 {
		totalPages = 1
	}

	page := s.Page
	if page > totalPages {
		page = totalPages
	}

	startIdx := (page - 1) * s.PageSize

	endIdx := startIdx + s.PageSize
	if endIdx > totalItems {
		endIdx = totalItems
	}

	pageItems := []T{}
	if startIdx < totalItems {
		pageItems = items[startIdx:endIdx]
	}

	return PageData[T]{
		Items:       pageItems,
		CurrentPage: page,
		PageSize:    s.PageSize,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasPrevPage: page > 1,
		HasNextPage: page < totalPages,
		PrevPage:    page - 1,
		NextPage:    page + 1,
		Query:       s.Query,
	}
}
