package draftstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iskrendev/insurance-portal/internal/ports/out/draftstore"
)

// Store is an in-memory implementation of draftstore.Store.
// Expired drafts are dropped lazily on access and by PurgeExpired.
// It is safe for concurrent use.
type Store struct {
	mu  sync.Mutex
	m   map[draftstore.Key]draftstore.Record
	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		m:   make(map[draftstore.Key]draftstore.Record),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Get(ctx context.Context, key draftstore.Key) (draftstore.Record, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.m[key]
	if !ok {
		return draftstore.Record{}, draftstore.ErrNotFound
	}
	if !rec.ExpiresAt.IsZero() && !s.now().Before(rec.ExpiresAt) {
		delete(s.m, key)
		return draftstore.Record{}, draftstore.ErrNotFound
	}
	out := rec
	out.Payload = append([]byte(nil), rec.Payload...)
	return out, nil
}

func (s *Store) Put(ctx context.Context, key draftstore.Key, rec draftstore.Record) error {
	_ = ctx
	if key.Owner == "" {
		return fmt.Errorf("%w: missing owner", draftstore.ErrInvalidDraft)
	}
	if !rec.UpdatedAt.IsZero() && !rec.ExpiresAt.IsZero() && !rec.ExpiresAt.After(rec.UpdatedAt) {
		return fmt.Errorf("%w: expires before update", draftstore.ErrInvalidDraft)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.Payload = append([]byte(nil), rec.Payload...)
	s.m[key] = rec
	return nil
}

func (s *Store) Delete(ctx context.Context, key draftstore.Key) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// PurgeExpired drops every expired draft and reports how many were removed.
func (s *Store) PurgeExpired(ctx context.Context) (int, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for k, rec := range s.m {
		if !rec.ExpiresAt.IsZero() && !now.Before(rec.ExpiresAt) {
			delete(s.m, k)
			n++
		}
	}
	return n, nil
}
