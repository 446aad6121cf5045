// Package memstore keeps templates in process memory. It backs the TUI
// when no database is configured and the HTTP handler tests.
package memstore

import (
	"bytes"
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/savedtemplate"
)

// row is a stored template plus its insertion order, which breaks ties
// between templates saved within the same clock tick.
type row struct {
	savedtemplate.Template
	seq uint64
}

type Store struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]row
	seq  uint64
	now  func() time.Time
}

func New() *Store {
	return &Store{
		rows: make(map[uuid.UUID]row),
		now:  time.Now,
	}
}

func (s *Store) Insert(_ context.Context, t *savedtemplate.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = uuid.New()
	t.CreatedAt = s.now()

	s.seq++
	s.rows[t.ID] = row{Template: *copyOf(*t), seq: s.seq}

	return nil
}

func (s *Store) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*savedtemplate.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var owned []row

	for _, r := range s.rows {
		if r.OwnerID == ownerID {
			owned = append(owned, r)
		}
	}

	slices.SortFunc(owned, func(a, b row) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.seq, a.seq))
	})

	out := make([]*savedtemplate.Template, len(owned))
	for i, r := range owned {
		out[i] = copyOf(r.Template)
	}

	return out, nil
}

func (s *Store) Get(_ context.Context, ownerID, id uuid.UUID) (*savedtemplate.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rows[id]
	if !ok || r.OwnerID != ownerID {
		return nil, savedtemplate.ErrNotFound
	}

	return copyOf(r.Template), nil
}

func (s *Store) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rows[id]
	if !ok || r.OwnerID != ownerID {
		return savedtemplate.ErrNotFound
	}

	delete(s.rows, id)

	return nil
}

func copyOf(t savedtemplate.Template) *savedtemplate.Template {
	t.Snapshot = bytes.Clone(t.Snapshot)
	return &t
}
