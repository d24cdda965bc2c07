package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"nibblify/internal/apierr"
	"nibblify/internal/client"
	"nibblify/internal/model"
	"nibblify/internal/transport"
)

const (
	pathDocuments = "/knowledge/documents"
	routeDocument = "/knowledge/documents/{id}"
	pathSearch    = "/knowledge/documents/search"
	pathUpload    = "/knowledge/documents/upload"
)

// ErrIDRequired is returned for calls addressing a document without an ID.
var ErrIDRequired = apierr.Validation("id is required", apierr.FieldError{Field: "id", Message: "required"})

// Documents is the resource module for knowledge documents.
type Documents struct {
	c         *client.Client
	maxUpload int64
	log       *zap.Logger
}

// GetAll returns the caller's documents as served by the backend's default page.
func (d *Documents) GetAll(ctx context.Context) ([]model.Document, error) {
	return d.list(ctx, nil)
}

// List returns one slice of the caller's documents.
func (d *Documents) List(ctx context.Context, skip, limit int) ([]model.Document, error) {
	q := url.Values{}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return d.list(ctx, q)
}

func (d *Documents) list(ctx context.Context, q url.Values) ([]model.Document, error) {
	docs := make([]model.Document, 0)
	err := d.c.Call(ctx, &transport.Request{Method: http.MethodGet, Path: pathDocuments, Query: q}, &docs)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// GetByID fetches one document.
func (d *Documents) GetByID(ctx context.Context, id model.ID) (model.Document, error) {
	if id.IsZero() {
		return model.Document{}, ErrIDRequired
	}
	var doc model.Document
	err := d.c.Call(ctx, &transport.Request{Method: http.MethodGet, Path: documentPath(id), Route: routeDocument}, &doc)
	if err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

// Create stores a new content-bearing (or externally file-backed) document.
func (d *Documents) Create(ctx context.Context, in model.CreateDocumentInput) (model.Document, error) {
	req, err := client.JSON(http.MethodPost, pathDocuments, "", in)
	if err != nil {
		return model.Document{}, err
	}
	var doc model.Document
	if err := d.c.Call(ctx, req, &doc); err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

// Update sends only the fields set in patch; everything else is left as the
// server holds it.
func (d *Documents) Update(ctx context.Context, id model.ID, patch model.UpdateDocumentInput) (model.Document, error) {
	if id.IsZero() {
		return model.Document{}, ErrIDRequired
	}
	req, err := client.JSON(http.MethodPut, documentPath(id), routeDocument, patch)
	if err != nil {
		return model.Document{}, err
	}
	var doc model.Document
	if err := d.c.Call(ctx, req, &doc); err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

// Delete removes a document. Both 200 (with the removed document) and 204
// count as success.
func (d *Documents) Delete(ctx context.Context, id model.ID) error {
	if id.IsZero() {
		return ErrIDRequired
	}
	return d.c.Call(ctx, &transport.Request{Method: http.MethodDelete, Path: documentPath(id), Route: routeDocument}, nil)
}

// Search returns one page of matches. Page and limit below 1 fall back to
// model.DefaultSearchPage and model.DefaultSearchLimit; iterating pages is
// the caller's job.
func (d *Documents) Search(ctx context.Context, query string, filters map[string]any, page, limit int) (model.SearchResult, error) {
	q := model.SearchQuery{Query: query, Filters: filters, Page: page, Limit: limit}.Normalize()
	req, err := client.JSON(http.MethodPost, pathSearch, "", q)
	if err != nil {
		return model.SearchResult{}, err
	}
	var res model.SearchResult
	if err := d.c.Call(ctx, req, &res); err != nil {
		return model.SearchResult{}, err
	}

	if res.Page == 0 {
		res.Page = q.Page
	}
	if res.Limit == 0 {
		res.Limit = q.Limit
	}
	if len(res.Documents) > res.Limit {
		d.log.Warn("search returned more documents than the page limit, truncating",
			zap.Int("limit", res.Limit),
			zap.Int("returned", len(res.Documents)),
		)
		res.Documents = res.Documents[:res.Limit]
	}
	if res.Documents == nil {
		res.Documents = []model.Document{}
	}
	return res, nil
}

func documentPath(id model.ID) string {
	return pathDocuments + "/" + url.PathEscape(id.String())
}
