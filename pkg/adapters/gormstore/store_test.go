package gormstore

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/massanella/fichaflow/pkg/ports"
	portstests "github.com/massanella/fichaflow/pkg/ports/tests"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "entries.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	store, err := New(db)
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}
	return store
}

func TestStoreContract(t *testing.T) {
	portstests.EntryStoreContractTest(t, newTestStore(t))
}

func TestStoreFinalizedColumn(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.Finalize(ctx, "nada"); err != ports.ErrEntryNotFound {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}

	snap := ports.EntrySnapshot{Answers: map[string]any{"motivo": "control"}, Computed: map[string]any{}}
	if err := store.Save(ctx, "e1", snap); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	final, err := store.Finalized(ctx, "e1")
	if err != nil || final {
		t.Fatalf("fresh entry must not be finalized: %v (%v)", final, err)
	}

	if err := store.Finalize(ctx, "e1"); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	final, err = store.Finalized(ctx, "e1")
	if err != nil || !final {
		t.Fatalf("finalized flag not persisted: %v (%v)", final, err)
	}

	// Overwriting the snapshot must not reset the finalized flag.
	if err := store.Save(ctx, "e1", snap); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	final, _ = store.Finalized(ctx, "e1")
	if !final {
		t.Error("save reset the finalized flag")
	}
}

func TestStoreRoundtripsNestedValues(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	snap := ports.EntrySnapshot{
		Answers: map[string]any{
			"tratamientos": []any{
				map[string]any{"tratamientoId": "t1", "nombre": "Limpieza", "cantidad": float64(2), "precio": float64(30)},
			},
		},
		Computed: map[string]any{
			"presupuesto": map[string]any{"subtotal": float64(60), "total": float64(60)},
		},
	}
	if err := store.Save(ctx, "e1", snap); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Load(ctx, "e1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	sels, ok := got.Answers["tratamientos"].([]any)
	if !ok || len(sels) != 1 {
		t.Fatalf("selection list lost: %v", got.Answers["tratamientos"])
	}
	comp, ok := got.Computed["presupuesto"].(map[string]any)
	if !ok || comp["total"] != float64(60) {
		t.Errorf("computed budget lost: %v", got.Computed["presupuesto"])
	}
}
