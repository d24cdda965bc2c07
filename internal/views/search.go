package views

import (
	"context"
	"io"

	"golang.org/x/time/rate"

	"nibblify/internal/model"
)

// maxSearchPages bounds RunAll against a backend whose total keeps growing.
const maxSearchPages = 1000

// SearchView runs full-text queries and pages through the results.
type SearchView struct {
	state
	docs    DocumentsAPI
	nav     Navigator
	limiter *rate.Limiter
	query   string
	result  model.SearchResult
	pages   int
}

// NewSearchView creates the search screen. pagesPerSecond throttles RunAll;
// zero or less means unthrottled.
func NewSearchView(docs DocumentsAPI, nav Navigator, pagesPerSecond float64) *SearchView {
	limit := rate.Inf
	if pagesPerSecond > 0 {
		limit = rate.Limit(pagesPerSecond)
	}
	return &SearchView{docs: docs, nav: nav, limiter: rate.NewLimiter(limit, 1)}
}

// Run fetches one page.
func (v *SearchView) Run(ctx context.Context, query string, filters map[string]any, page, limit int) error {
	if err := v.begin(); err != nil {
		return err
	}
	res, err := v.docs.Search(ctx, query, filters, page, limit)
	if err := v.finish(v.nav, err, "Search failed"); err != nil {
		return err
	}
	v.query = query
	v.result = res
	v.pages = 1
	return nil
}

// RunAll walks every page until page*limit reaches the total, collecting the
// documents into one result.
func (v *SearchView) RunAll(ctx context.Context, query string, filters map[string]any, limit int) error {
	if err := v.begin(); err != nil {
		return err
	}
	var all model.SearchResult
	pages := 0
	for page := model.DefaultSearchPage; pages < maxSearchPages; page++ {
		if err := v.limiter.Wait(ctx); err != nil {
			return v.finish(v.nav, err, "Search cancelled")
		}
		res, err := v.docs.Search(ctx, query, filters, page, limit)
		if err != nil {
			return v.finish(v.nav, err, "Search failed")
		}
		pages++
		all.Documents = append(all.Documents, res.Documents...)
		all.Total = res.Total
		all.Limit = res.Limit
		all.Page = res.Page
		if !res.HasMore() || len(res.Documents) == 0 {
			break
		}
	}
	v.succeed()
	v.query = query
	v.result = all
	v.pages = pages
	return nil
}

// Result returns the last result. After RunAll it holds every page.
func (v *SearchView) Result() model.SearchResult {
	return v.result
}

// Pages returns how many pages the last run fetched.
func (v *SearchView) Pages() int {
	return v.pages
}

// Render prints the matches with a paging summary.
func (v *SearchView) Render(w io.Writer) {
	if !v.renderState(w, "Searching...") {
		return
	}
	r := v.result
	heading(w, "Results for %q", v.query)
	if len(r.Documents) == 0 {
		dimColor.Fprintln(w, "No matching documents.")
		return
	}
	for _, d := range r.Documents {
		fprintf(w, "%-6s  %s\n", d.ID, truncate(d.Title, 60))
	}
	if v.pages > 1 {
		dimColor.Fprintf(w, "%d of %d documents, %d pages\n", len(r.Documents), r.Total, v.pages)
		return
	}
	totalPages := 1
	if r.Limit > 0 {
		totalPages = (r.Total + r.Limit - 1) / r.Limit
	}
	dimColor.Fprintf(w, "page %d of %d (%d total)\n", r.Page, max(totalPages, 1), r.Total)
}
