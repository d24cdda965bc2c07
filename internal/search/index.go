// Package search keeps an in-memory Bleve index over document titles and
// contents for the stand-in backend.
package search

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"nibblify/internal/model"
)

// Supported filter keys.
const (
	FilterArchived = "is_archived"
	FilterFileType = "file_type"
)

// entry is the indexed projection of a document.
type entry struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	UserID     string `json:"user_id"`
	FileType   string `json:"file_type"`
	IsArchived bool   `json:"is_archived"`
}

// Index implements full-text search over documents.
type Index struct {
	index bleve.Index
}

// Hits is one page of matching document IDs plus the total match count.
type Hits struct {
	IDs   []model.ID
	Total int
}

// NewIndex creates an empty memory-only index.
func NewIndex() (*Index, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("user_id", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("file_type", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("is_archived", bleve.NewBooleanFieldMapping())
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &Index{index: index}, nil
}

// Put indexes or re-indexes a document.
func (i *Index) Put(doc model.Document) error {
	e := entry{
		Title:      doc.Title,
		Content:    doc.Text(),
		UserID:     doc.UserID.String(),
		FileType:   strings.ToLower(doc.FileType),
		IsArchived: doc.IsArchived,
	}
	if err := i.index.Index(doc.ID.String(), e); err != nil {
		return fmt.Errorf("index document %s: %w", doc.ID, err)
	}
	return nil
}

// Remove drops a document from the index.
func (i *Index) Remove(id model.ID) error {
	if err := i.index.Delete(id.String()); err != nil {
		return fmt.Errorf("unindex document %s: %w", id, err)
	}
	return nil
}

// Search returns the owner's matches for q, best score first. An empty text
// query matches every document of the owner. Unknown filter keys are ignored.
func (i *Index) Search(owner model.ID, q model.SearchQuery) (*Hits, error) {
	q = q.Normalize()

	ownerQuery := bleve.NewTermQuery(owner.String())
	ownerQuery.SetField("user_id")
	clauses := []blevequery.Query{ownerQuery, textQuery(q.Query)}

	if v, ok := q.Filters[FilterArchived]; ok {
		if b, ok := v.(bool); ok {
			bq := bleve.NewBoolFieldQuery(b)
			bq.SetField("is_archived")
			clauses = append(clauses, bq)
		}
	}
	if v, ok := q.Filters[FilterFileType]; ok {
		if s, ok := v.(string); ok && s != "" {
			tq := bleve.NewTermQuery(strings.ToLower(s))
			tq.SetField("file_type")
			clauses = append(clauses, tq)
		}
	}

	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(clauses...), q.Limit, (q.Page-1)*q.Limit, false)
	req.SortBy([]string{"-_score", "_id"})

	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := &Hits{IDs: make([]model.ID, 0, len(res.Hits)), Total: int(res.Total)}
	for _, hit := range res.Hits {
		out.IDs = append(out.IDs, model.ID(hit.ID))
	}
	return out, nil
}

// Close releases the index.
func (i *Index) Close() error {
	return i.index.Close()
}

func textQuery(text string) blevequery.Query {
	text = strings.TrimSpace(text)
	if text == "" {
		return bleve.NewMatchAllQuery()
	}
	tq := bleve.NewMatchQuery(text)
	tq.SetField("title")
	cq := bleve.NewMatchQuery(text)
	cq.SetField("content")
	return bleve.NewDisjunctionQuery(tq, cq)
}
