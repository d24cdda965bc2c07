package mocks

import (
	"context"

	"nibblify/internal/model"
	"nibblify/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Create(ctx context.Context, owner model.ID, in model.CreateDocumentInput) (*model.Document, error) {
	args := m.Called(ctx, owner, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Upload(ctx context.Context, owner model.ID, in service.UploadInput) (*model.Document, error) {
	args := m.Called(ctx, owner, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, owner model.ID, skip, limit int) ([]model.Document, error) {
	args := m.Called(ctx, owner, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, owner, id model.ID) (*model.Document, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, owner, id model.ID, patch model.UpdateDocumentInput) (*model.Document, error) {
	args := m.Called(ctx, owner, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, owner, id model.ID) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func (m *MockDocumentService) Search(ctx context.Context, owner model.ID, q model.SearchQuery) (*model.SearchResult, error) {
	args := m.Called(ctx, owner, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SearchResult), args.Error(1)
}
