// Package memory implements the repositories in process memory. Nothing
// survives a restart.
package memory

import (
	"strconv"
	"sync"

	"nibblify/internal/model"
)

// sequence hands out increasing numeric IDs, as the real backend does.
type sequence struct {
	mu   sync.Mutex
	last int64
}

func (s *sequence) next() model.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return model.ID(strconv.FormatInt(s.last, 10))
}

// idLess orders numeric IDs numerically and anything else lexically.
func idLess(a, b model.ID) bool {
	ai, aErr := strconv.ParseInt(a.String(), 10, 64)
	bi, bErr := strconv.ParseInt(b.String(), 10, 64)
	if aErr == nil && bErr == nil {
		return ai < bi
	}
	return a < b
}

func cloneDocument(d *model.Document) *model.Document {
	out := *d
	if d.Content != nil {
		c := *d.Content
		out.Content = &c
	}
	if d.UpdatedAt != nil {
		u := *d.UpdatedAt
		out.UpdatedAt = &u
	}
	out.Tags = append([]model.Tag(nil), d.Tags...)
	return &out
}
