package repository

import (
	"context"

	"nibblify/internal/model"
)

// UserRecord is a stored account with its password hash.
type UserRecord struct {
	model.User
	PasswordHash string
}

// UserRepository defines data access for accounts.
type UserRepository interface {
	// Create stores a new account, assigning its ID. Returns ErrConflict for a taken e-mail.
	Create(ctx context.Context, u *UserRecord) (*UserRecord, error)
	FindByID(ctx context.Context, id model.ID) (*UserRecord, error)
	// FindByEmail matches e-mails case-insensitively.
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
}

// TagRepository defines data access for tags.
type TagRepository interface {
	Create(ctx context.Context, tag *model.Tag) (*model.Tag, error)
	FindByName(ctx context.Context, owner model.ID, name string) (*model.Tag, error)
	ListByOwner(ctx context.Context, owner model.ID) ([]model.Tag, error)
	// FindByIDs returns the owner's tags among ids; unknown IDs are skipped.
	FindByIDs(ctx context.Context, owner model.ID, ids []model.ID) ([]model.Tag, error)
}
