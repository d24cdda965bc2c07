package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"nibblify/internal/model"
	"nibblify/internal/repository"
)

// UserMemory is an in-memory repository.UserRepository.
type UserMemory struct {
	mu      sync.RWMutex
	seq     sequence
	users   map[model.ID]repository.UserRecord
	byEmail map[string]model.ID
}

// NewUserMemory creates an empty repository.
func NewUserMemory() *UserMemory {
	return &UserMemory{
		users:   make(map[model.ID]repository.UserRecord),
		byEmail: make(map[string]model.ID),
	}
}

var _ repository.UserRepository = (*UserMemory)(nil)

func (r *UserMemory) Create(_ context.Context, u *repository.UserRecord) (*repository.UserRecord, error) {
	key := strings.ToLower(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[key]; taken {
		return nil, repository.ErrConflict
	}
	stored := *u
	stored.ID = r.seq.next()
	r.users[stored.ID] = stored
	r.byEmail[key] = stored.ID
	out := stored
	return &out, nil
}

func (r *UserMemory) FindByID(_ context.Context, id model.ID) (*repository.UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserMemory) FindByEmail(_ context.Context, email string) (*repository.UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := r.users[id]
	return &u, nil
}

// TagMemory is an in-memory repository.TagRepository.
type TagMemory struct {
	mu   sync.RWMutex
	seq  sequence
	tags map[model.ID]model.Tag
}

// NewTagMemory creates an empty repository.
func NewTagMemory() *TagMemory {
	return &TagMemory{tags: make(map[model.ID]model.Tag)}
}

var _ repository.TagRepository = (*TagMemory)(nil)

func (r *TagMemory) Create(_ context.Context, tag *model.Tag) (*model.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tags {
		if t.UserID == tag.UserID && strings.EqualFold(t.Name, tag.Name) {
			return nil, repository.ErrConflict
		}
	}
	stored := *tag
	stored.ID = r.seq.next()
	r.tags[stored.ID] = stored
	return &stored, nil
}

func (r *TagMemory) FindByName(_ context.Context, owner model.ID, name string) (*model.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tags {
		if t.UserID == owner && strings.EqualFold(t.Name, name) {
			out := t
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *TagMemory) ListByOwner(_ context.Context, owner model.ID) ([]model.Tag, error) {
	r.mu.RLock()
	out := make([]model.Tag, 0)
	for _, t := range r.tags {
		if t.UserID == owner {
			out = append(out, t)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	return out, nil
}

func (r *TagMemory) FindByIDs(_ context.Context, owner model.ID, ids []model.ID) ([]model.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Tag, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.tags[id]; ok && t.UserID == owner {
			out = append(out, t)
		}
	}
	return out, nil
}
