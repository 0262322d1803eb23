package ports

import (
	"context"
	"errors"
)

// ErrEntryNotFound is returned when an entry ID cannot be found in the store.
var ErrEntryNotFound = errors.New("entry not found")

// EntrySnapshot is the durable portion of a wizard session: the answer map
// and the computed-value map. Node history and save status are session-local
// and never persisted.
type EntrySnapshot struct {
	Answers  map[string]any `json:"answers"`
	Computed map[string]any `json:"computed"`
}

// Clone deep-copies the top-level maps so a snapshot handed to a store
// cannot observe later session edits.
func (s EntrySnapshot) Clone() EntrySnapshot {
	out := EntrySnapshot{
		Answers:  make(map[string]any, len(s.Answers)),
		Computed: make(map[string]any, len(s.Computed)),
	}
	for k, v := range s.Answers {
		out.Answers[k] = v
	}
	for k, v := range s.Computed {
		out.Computed[k] = v
	}
	return out
}

// EntryStore defines the interface for persisting clinical-entry progress.
// This is the external store of the autosave path; the engine assumes
// single-writer access per entry.
type EntryStore interface {
	// Save persists the snapshot for a given entry ID.
	Save(ctx context.Context, entryID string, snap EntrySnapshot) error

	// Load retrieves the snapshot for a given entry ID.
	// Returns ErrEntryNotFound if the entry does not exist.
	Load(ctx context.Context, entryID string) (EntrySnapshot, error)

	// Delete removes the entry.
	Delete(ctx context.Context, entryID string) error

	// List returns the known entry IDs.
	List(ctx context.Context) ([]string, error)

	// Finalize marks the entry complete. Idempotent: finalizing an already
	// finalized entry is not an error.
	Finalize(ctx context.Context, entryID string) error
}
