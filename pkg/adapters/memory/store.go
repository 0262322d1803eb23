// Package memory provides in-memory adapters for the engine ports: entry
// store, template loader and treatment catalog. Used by tests and the
// interactive demos.
package memory

import (
	"context"
	"sync"

	"github.com/massanella/fichaflow/pkg/ports"
)

// Store implements ports.EntryStore in memory. Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	data      map[string]ports.EntrySnapshot
	finalized map[string]bool
}

// NewStore creates a new in-memory entry store.
func NewStore() *Store {
	return &Store{
		data:      make(map[string]ports.EntrySnapshot),
		finalized: make(map[string]bool),
	}
}

// Save persists the snapshot in memory. The snapshot is copied so the
// caller cannot mutate stored state through shared maps.
func (s *Store) Save(ctx context.Context, entryID string, snap ports.EntrySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[entryID] = snap.Clone()
	return nil
}

// Load retrieves the snapshot, copied on read.
func (s *Store) Load(ctx context.Context, entryID string) (ports.EntrySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.data[entryID]
	if !ok {
		return ports.EntrySnapshot{}, ports.ErrEntryNotFound
	}
	return snap.Clone(), nil
}

// Delete removes the entry.
func (s *Store) Delete(ctx context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, entryID)
	delete(s.finalized, entryID)
	return nil
}

// List returns the known entry IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

// Finalize marks the entry complete. Idempotent.
func (s *Store) Finalize(ctx context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[entryID]; !ok {
		return ports.ErrEntryNotFound
	}
	s.finalized[entryID] = true
	return nil
}

// Finalized reports whether the entry has been finalized.
func (s *Store) Finalized(entryID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finalized[entryID]
}
