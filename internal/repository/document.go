package repository

import (
	"context"

	"nibblify/internal/model"
)

// DocumentRepository defines data access for documents.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create stores a new document, assigning its ID.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, or ErrNotFound.
	FindByID(ctx context.Context, id model.ID) (*model.Document, error)

	// ListByOwner returns one page of a user's documents, oldest first, and the total count.
	ListByOwner(ctx context.Context, owner model.ID, pq PageQuery) (*PageResult[model.Document], error)

	// Update replaces a stored document, or returns ErrNotFound.
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Delete removes a document by ID. It returns nil if the row did not exist.
	Delete(ctx context.Context, id model.ID) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
