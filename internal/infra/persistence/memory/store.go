// Package memory keeps bioforge state in process memory. It backs tests and
// the "memory" storage driver.
package memory

import (
	"context"
	"sync"

	"bioforge/pkg/domain"
)

var _ domain.StateStore = (*Store)(nil)

// Store holds a single cloned State.
type Store struct {
	mu    sync.RWMutex
	state domain.State
	ok    bool
	saves int
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

// Load returns a copy of the last saved state.
func (s *Store) Load(context.Context) (domain.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ok {
		return domain.State{}, false, nil
	}
	return s.state.Clone(), true, nil
}

// Save stores a copy of state.
func (s *Store) Save(_ context.Context, state domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
	s.ok = true
	s.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
