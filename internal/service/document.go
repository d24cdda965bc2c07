package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"nibblify/internal/model"
	"nibblify/internal/repository"
	"nibblify/internal/search"
)

var (
	ErrIDRequired      = errors.New("id is required")
	ErrNotFound        = errors.New("document not found")
	ErrForbidden       = errors.New("not enough permissions")
	ErrTitleRequired   = errors.New("title is required")
	ErrReaderNil       = errors.New("reader is nil")
	ErrUnsupportedFile = errors.New("only PDF files are supported")
	ErrFileTooLarge    = errors.New("file too large")
)

// Document list defaults, as served by the backend.
const (
	DefaultListLimit = 100
	// DefaultMaxUploadBytes caps uploaded files.
	DefaultMaxUploadBytes int64 = 10 * 1024 * 1024
)

// UploadInput is an uploaded file plus its form fields.
type UploadInput struct {
	Reader   io.Reader
	Filename string
	Title    string
	TagIDs   []model.ID
}

// DocumentService defines the use cases for handling documents. Every call is
// made on behalf of owner; documents of other users are ErrForbidden.
type DocumentService interface {
	// Create stores a document written by hand.
	Create(ctx context.Context, owner model.ID, in model.CreateDocumentInput) (*model.Document, error)

	// Upload stores a PDF as a file-backed document with its text extracted into Content.
	Upload(ctx context.Context, owner model.ID, in UploadInput) (*model.Document, error)

	// List returns documents using skip/limit, oldest first.
	List(ctx context.Context, owner model.ID, skip, limit int) ([]model.Document, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, owner, id model.ID) (*model.Document, error)

	// Update applies the non-nil fields of patch.
	Update(ctx context.Context, owner, id model.ID, patch model.UpdateDocumentInput) (*model.Document, error)

	// Delete removes a document from the repository and the search index.
	Delete(ctx context.Context, owner, id model.ID) error

	// Search runs a full-text query over the owner's documents.
	Search(ctx context.Context, owner model.ID, q model.SearchQuery) (*model.SearchResult, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	repo      repository.DocumentRepository
	tags      repository.TagRepository
	index     *search.Index
	maxUpload int64
	log       *zap.Logger
	now       func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(repo repository.DocumentRepository, tags repository.TagRepository, index *search.Index, maxUpload int64, log *zap.Logger) DocumentService {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &documentService{
		repo:      repo,
		tags:      tags,
		index:     index,
		maxUpload: maxUpload,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *documentService) Create(ctx context.Context, owner model.ID, in model.CreateDocumentInput) (*model.Document, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	tags, err := s.tags.FindByIDs(ctx, owner, in.TagIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}
	doc := &model.Document{
		Title:      title,
		Content:    in.Content,
		FilePath:   in.FilePath,
		FileType:   in.FileType,
		URL:        in.URL,
		CreatedAt:  s.now(),
		UserID:     owner,
		IsArchived: in.IsArchived,
		Tags:       tags,
	}
	return s.store(ctx, doc)
}

func (s *documentService) Upload(ctx context.Context, owner model.ID, in UploadInput) (*model.Document, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	ext := strings.ToLower(filepath.Ext(in.Filename))
	if ext != ".pdf" {
		return nil, ErrUnsupportedFile
	}
	data, err := io.ReadAll(io.LimitReader(in.Reader, s.maxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxUpload {
		return nil, ErrFileTooLarge
	}
	text, err := extractText(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(in.Filename), filepath.Ext(in.Filename))
	}
	tags, err := s.tags.FindByIDs(ctx, owner, in.TagIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}

	doc := &model.Document{
		Title:     title,
		FilePath:  filepath.ToSlash(filepath.Join("uploads", uuid.New().String()+ext)),
		FileType:  strings.TrimPrefix(ext, "."),
		CreatedAt: s.now(),
		UserID:    owner,
		Tags:      tags,
	}
	if text != "" {
		doc.Content = &text
	}
	return s.store(ctx, doc)
}

// store saves the document and indexes it; the row is removed again if
// indexing fails.
func (s *documentService) store(ctx context.Context, doc *model.Document) (*model.Document, error) {
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	if err := s.index.Put(*stored); err != nil {
		if delErr := s.repo.Delete(ctx, stored.ID); delErr != nil {
			return nil, fmt.Errorf("index failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("index failed: %w", err)
	}
	return stored, nil
}

// List returns a page of the owner's documents without exposing repository types.
func (s *documentService) List(ctx context.Context, owner model.ID, skip, limit int) ([]model.Document, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if skip < 0 {
		skip = 0
	}

	res, err := s.repo.ListByOwner(ctx, owner, repository.PageQuery{Limit: limit, Offset: skip})
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, owner, id model.ID) (*model.Document, error) {
	if id.IsZero() {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if doc.UserID != owner {
		return nil, ErrForbidden
	}
	return doc, nil
}

func (s *documentService) Update(ctx context.Context, owner, id model.ID, patch model.UpdateDocumentInput) (*model.Document, error) {
	doc, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		doc.Title = title
	}
	if patch.Content != nil {
		doc.Content = patch.Content
	}
	if patch.FilePath != nil {
		doc.FilePath = *patch.FilePath
	}
	if patch.FileType != nil {
		doc.FileType = *patch.FileType
	}
	if patch.URL != nil {
		doc.URL = *patch.URL
	}
	if patch.IsArchived != nil {
		doc.IsArchived = *patch.IsArchived
	}
	if patch.TagIDs != nil {
		tags, err := s.tags.FindByIDs(ctx, owner, patch.TagIDs)
		if err != nil {
			return nil, fmt.Errorf("resolve tags: %w", err)
		}
		doc.Tags = tags
	}
	now := s.now()
	doc.UpdatedAt = &now

	updated, err := s.repo.Update(ctx, doc)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update document: %w", err)
	}
	if err := s.index.Put(*updated); err != nil {
		s.log.Warn("reindex after update failed", zap.String("id", id.String()), zap.Error(err))
	}
	return updated, nil
}

// Delete removes the row first, then the index entry.
func (s *documentService) Delete(ctx context.Context, owner, id model.ID) error {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := s.index.Remove(id); err != nil {
		s.log.Warn("unindex after delete failed", zap.String("id", id.String()), zap.Error(err))
	}
	return nil
}

func (s *documentService) Search(ctx context.Context, owner model.ID, q model.SearchQuery) (*model.SearchResult, error) {
	q = q.Normalize()
	hits, err := s.index.Search(owner, q)
	if err != nil {
		return nil, err
	}

	res := &model.SearchResult{
		Documents: make([]model.Document, 0, len(hits.IDs)),
		Total:     hits.Total,
		Page:      q.Page,
		Limit:     q.Limit,
	}
	for _, id := range hits.IDs {
		doc, err := s.repo.FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("index returned a missing document", zap.String("id", id.String()))
			continue
		}
		if err != nil {
			return nil, err
		}
		res.Documents = append(res.Documents, *doc)
	}
	return res, nil
}

// extractText opens data as a PDF and returns its plain text. Pages whose text
// cannot be decoded are skipped; only an unreadable file is an error.
func extractText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		t, err := pageText(page)
		if err != nil {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(t)
	}
	return strings.TrimSpace(buf.String()), nil
}

func pageText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract page: %v", r)
		}
	}()
	return page.GetPlainText(nil)
}
