// Package file provides filesystem adapters: entries as JSON files and
// templates loaded from a directory of JSON or YAML documents.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/massanella/fichaflow/pkg/ports"
)

// Store implements ports.EntryStore on the local filesystem. Each entry is
// one JSON file; a finalized entry gains a sibling ".final" marker.
type Store struct {
	BasePath string
}

// NewStore creates a Store rooted at basePath. If basePath is empty it
// defaults to ".fichaflow/entries".
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".fichaflow", "entries")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) entryPath(entryID string) string {
	return filepath.Join(s.BasePath, entryID+".json")
}

func (s *Store) markerPath(entryID string) string {
	return filepath.Join(s.BasePath, entryID+".final")
}

// Save persists the snapshot as an indented JSON file.
func (s *Store) Save(ctx context.Context, entryID string, snap ports.EntrySnapshot) error {
	if entryID == "" {
		return fmt.Errorf("entryID cannot be empty")
	}
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure entry directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(s.entryPath(entryID), data, 0644); err != nil {
		return fmt.Errorf("failed to write entry file: %w", err)
	}
	return nil
}

// Load retrieves the snapshot from its JSON file.
func (s *Store) Load(ctx context.Context, entryID string) (ports.EntrySnapshot, error) {
	if entryID == "" {
		return ports.EntrySnapshot{}, fmt.Errorf("entryID cannot be empty")
	}
	data, err := os.ReadFile(s.entryPath(entryID))
	if err != nil {
		if os.IsNotExist(err) {
			return ports.EntrySnapshot{}, ports.ErrEntryNotFound
		}
		return ports.EntrySnapshot{}, fmt.Errorf("failed to read entry file: %w", err)
	}

	var snap ports.EntrySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return ports.EntrySnapshot{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if snap.Answers == nil {
		snap.Answers = make(map[string]any)
	}
	if snap.Computed == nil {
		snap.Computed = make(map[string]any)
	}
	return snap, nil
}

// Delete removes the entry file and its finalized marker.
func (s *Store) Delete(ctx context.Context, entryID string) error {
	if err := os.Remove(s.entryPath(entryID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete entry file: %w", err)
	}
	if err := os.Remove(s.markerPath(entryID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete finalized marker: %w", err)
	}
	return nil
}

// List returns the entry IDs present in the base directory.
func (s *Store) List(ctx context.Context) ([]string, error) {
	dirEntries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read entry directory: %w", err)
	}

	var ids []string
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

// Finalize writes the marker file. Idempotent.
func (s *Store) Finalize(ctx context.Context, entryID string) error {
	if _, err := os.Stat(s.entryPath(entryID)); err != nil {
		if os.IsNotExist(err) {
			return ports.ErrEntryNotFound
		}
		return err
	}
	return os.WriteFile(s.markerPath(entryID), []byte("finalized\n"), 0644)
}
