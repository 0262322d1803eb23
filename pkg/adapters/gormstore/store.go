// Package gormstore implements the entry store over a relational database
// via GORM, persisting the answer and computed maps as JSON columns.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/massanella/fichaflow/pkg/ports"
)

// Entry is the persistence model for one clinical entry snapshot.
type Entry struct {
	ID        string         `gorm:"primaryKey;size:64"`
	Answers   datatypes.JSON `gorm:"type:json"`
	Computed  datatypes.JSON `gorm:"type:json"`
	Finalized bool           `gorm:"default:false"`
}

// TableName keeps the table name stable across GORM naming strategies.
func (Entry) TableName() string { return "clinical_entries" }

// Store implements ports.EntryStore on a gorm.DB.
type Store struct {
	db *gorm.DB
}

// New migrates the entries table and returns the store.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate entries table: %w", err)
	}
	return &Store{db: db}, nil
}

// Save upserts the snapshot.
func (s *Store) Save(ctx context.Context, entryID string, snap ports.EntrySnapshot) error {
	answers, err := json.Marshal(snap.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}
	computed, err := json.Marshal(snap.Computed)
	if err != nil {
		return fmt.Errorf("failed to marshal computed: %w", err)
	}

	entry := Entry{ID: entryID, Answers: answers, Computed: computed}
	err = s.db.WithContext(ctx).
		Where(Entry{ID: entryID}).
		Assign(map[string]any{"answers": entry.Answers, "computed": entry.Computed}).
		FirstOrCreate(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}
	return nil
}

// Load retrieves the snapshot.
func (s *Store) Load(ctx context.Context, entryID string) (ports.EntrySnapshot, error) {
	var entry Entry
	err := s.db.WithContext(ctx).First(&entry, "id = ?", entryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.EntrySnapshot{}, ports.ErrEntryNotFound
		}
		return ports.EntrySnapshot{}, fmt.Errorf("failed to load entry: %w", err)
	}

	snap := ports.EntrySnapshot{
		Answers:  make(map[string]any),
		Computed: make(map[string]any),
	}
	if len(entry.Answers) > 0 {
		if err := json.Unmarshal(entry.Answers, &snap.Answers); err != nil {
			return ports.EntrySnapshot{}, fmt.Errorf("failed to unmarshal answers: %w", err)
		}
	}
	if len(entry.Computed) > 0 {
		if err := json.Unmarshal(entry.Computed, &snap.Computed); err != nil {
			return ports.EntrySnapshot{}, fmt.Errorf("failed to unmarshal computed: %w", err)
		}
	}
	return snap, nil
}

// Delete removes the entry row.
func (s *Store) Delete(ctx context.Context, entryID string) error {
	return s.db.WithContext(ctx).Delete(&Entry{}, "id = ?", entryID).Error
}

// List returns the stored entry IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&Entry{}).Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return ids, nil
}

// Finalize flips the finalized flag. Idempotent.
func (s *Store) Finalize(ctx context.Context, entryID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Entry{}).Where("id = ?", entryID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check entry existence: %w", err)
	}
	if count == 0 {
		return ports.ErrEntryNotFound
	}
	err := s.db.WithContext(ctx).Model(&Entry{}).
		Where("id = ?", entryID).
		Update("finalized", true).Error
	if err != nil {
		return fmt.Errorf("failed to finalize entry: %w", err)
	}
	return nil
}

// Finalized reports whether the entry has been finalized.
func (s *Store) Finalized(ctx context.Context, entryID string) (bool, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Select("finalized").First(&entry, "id = ?", entryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ports.ErrEntryNotFound
		}
		return false, err
	}
	return entry.Finalized, nil
}
