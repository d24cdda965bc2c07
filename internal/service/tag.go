package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nibblify/internal/model"
	"nibblify/internal/repository"
)

var ErrTagNameRequired = errors.New("tag name is required")

// TagService manages per-user tags.
type TagService interface {
	// Create returns the existing tag when the name is already in use.
	Create(ctx context.Context, owner model.ID, name string) (*model.Tag, error)
	List(ctx context.Context, owner model.ID) ([]model.Tag, error)
}

type tagService struct {
	repo repository.TagRepository
}

// NewTagService constructs a new TagService.
func NewTagService(repo repository.TagRepository) TagService {
	return &tagService{repo: repo}
}

func (s *tagService) Create(ctx context.Context, owner model.ID, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTagNameRequired
	}
	if existing, err := s.repo.FindByName(ctx, owner, name); err == nil {
		return existing, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	tag, err := s.repo.Create(ctx, &model.Tag{Name: name, UserID: owner, CreatedAt: time.Now().UTC()})
	if errors.Is(err, repository.ErrConflict) {
		return s.repo.FindByName(ctx, owner, name)
	}
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return tag, nil
}

func (s *tagService) List(ctx context.Context, owner model.ID) ([]model.Tag, error) {
	return s.repo.ListByOwner(ctx, owner)
}
