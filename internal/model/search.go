package model

// Search defaults applied when the caller leaves page or limit unset.
const (
	DefaultSearchPage  = 1
	DefaultSearchLimit = 20
)

// SearchQuery is the body of a search call.
type SearchQuery struct {
	Query   string         `json:"query"`
	Filters map[string]any `json:"filters"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}

// Normalize fills in defaults for unset paging values and a nil filter map.
func (q SearchQuery) Normalize() SearchQuery {
	if q.Page < 1 {
		q.Page = DefaultSearchPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultSearchLimit
	}
	if q.Filters == nil {
		q.Filters = map[string]any{}
	}
	return q
}

// SearchResult is one page of matching documents. len(Documents) <= Limit.
type SearchResult struct {
	Documents []Document `json:"documents"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	Limit     int        `json:"limit"`
}

// HasMore reports whether pages after this one exist.
func (r SearchResult) HasMore() bool {
	return r.Page*r.Limit < r.Total
}
