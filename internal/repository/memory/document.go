package memory

import (
	"context"
	"sort"
	"sync"

	"nibblify/internal/model"
	"nibblify/internal/repository"
)

// DocumentMemory is an in-memory repository.DocumentRepository.
type DocumentMemory struct {
	mu   sync.RWMutex
	seq  sequence
	docs map[model.ID]*model.Document
}

// NewDocumentMemory creates an empty repository.
func NewDocumentMemory() *DocumentMemory {
	return &DocumentMemory{docs: make(map[model.ID]*model.Document)}
}

var _ repository.DocumentRepository = (*DocumentMemory)(nil)

func (r *DocumentMemory) Create(_ context.Context, doc *model.Document) (*model.Document, error) {
	stored := cloneDocument(doc)
	stored.ID = r.seq.next()

	r.mu.Lock()
	r.docs[stored.ID] = stored
	r.mu.Unlock()
	return cloneDocument(stored), nil
}

func (r *DocumentMemory) FindByID(_ context.Context, id model.ID) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneDocument(d), nil
}

func (r *DocumentMemory) ListByOwner(_ context.Context, owner model.ID, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	r.mu.RLock()
	owned := make([]*model.Document, 0)
	for _, d := range r.docs {
		if d.UserID == owner {
			owned = append(owned, d)
		}
	}
	r.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool { return idLess(owned[i].ID, owned[j].ID) })

	start := min(max(pq.Offset, 0), len(owned))
	end := len(owned)
	if pq.Limit > 0 {
		end = min(start+pq.Limit, len(owned))
	}

	items := make([]model.Document, 0, end-start)
	for _, d := range owned[start:end] {
		items = append(items, *cloneDocument(d))
	}
	return &repository.PageResult[model.Document]{Items: items, Total: len(owned)}, nil
}

func (r *DocumentMemory) Update(_ context.Context, doc *model.Document) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	r.docs[doc.ID] = cloneDocument(doc)
	return cloneDocument(doc), nil
}

func (r *DocumentMemory) Delete(_ context.Context, id model.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}
