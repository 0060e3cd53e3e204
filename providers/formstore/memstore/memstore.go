// Package memstore keeps saved forms in process memory.
package memstore

import (
	"context"
	"sync"

	"github.com/leofalp/intake/core/form"
)

// Store is a concurrency-safe in-memory form history.
type Store struct {
	mu    sync.RWMutex
	forms []form.FormData
}

// New returns an empty Store.
func New() *Store {
	return &Store{forms: []form.FormData{}}
}

var _ form.Store = (*Store)(nil)

// Save appends data to the history.
func (s *Store) Save(_ context.Context, data form.FormData) error {
	s.mu.Lock()
	s.forms = append(s.forms, data)
	s.mu.Unlock()
	return nil
}

// Latest returns the last saved form.
func (s *Store) Latest(_ context.Context) (form.FormData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.forms) == 0 {
		return form.FormData{}, form.ErrNotFound
	}
	return s.forms[len(s.forms)-1], nil
}

// All returns a copy of every saved form, oldest first.
func (s *Store) All(_ context.Context) []form.FormData {
	s.mu.RLock()
	out := make([]form.FormData, len(s.forms))
	copy(out, s.forms)
	s.mu.RUnlock()
	return out
}

// Count returns the number of saved forms.
func (s *Store) Count(_ context.Context) int {
	s.mu.RLock()
	n := len(s.forms)
	s.mu.RUnlock()
	return n
}
