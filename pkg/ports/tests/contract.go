package tests

import (
	"context"
	"testing"

	"github.com/massanella/fichaflow/pkg/ports"
)

// EntryStoreContractTest is a reusable suite that verifies an adapter
// complies with ports.EntryStore semantics.
func EntryStoreContractTest(t *testing.T, store ports.EntryStore) {
	t.Helper()
	ctx := context.Background()

	snap := ports.EntrySnapshot{
		Answers: map[string]any{
			"motivo":      "control",
			"tratamiento": []any{map[string]any{"tratamientoId": "t1", "nombre": "Limpieza", "cantidad": float64(1), "precio": float64(30)}},
		},
		Computed: map[string]any{
			"presupuesto": map[string]any{"subtotal": float64(30), "total": float64(30)},
		},
	}

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-entry")
		if err != ports.ErrEntryNotFound {
			t.Fatalf("expected ErrEntryNotFound, got %v", err)
		}
	})

	t.Run("Save_Load_Roundtrip", func(t *testing.T) {
		if err := store.Save(ctx, "entry-1", snap); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		got, err := store.Load(ctx, "entry-1")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if got.Answers["motivo"] != "control" {
			t.Errorf("answers mismatch: got %v", got.Answers["motivo"])
		}
		if got.Computed["presupuesto"] == nil {
			t.Error("computed map lost in roundtrip")
		}
	})

	t.Run("Save_Overwrites", func(t *testing.T) {
		second := snap.Clone()
		second.Answers["motivo"] = "urgencia"
		if err := store.Save(ctx, "entry-1", second); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		got, err := store.Load(ctx, "entry-1")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if got.Answers["motivo"] != "urgencia" {
			t.Errorf("expected last write to win, got %v", got.Answers["motivo"])
		}
	})

	t.Run("List", func(t *testing.T) {
		if err := store.Save(ctx, "entry-2", snap); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		ids, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		lookup := make(map[string]bool)
		for _, id := range ids {
			lookup[id] = true
		}
		if !lookup["entry-1"] || !lookup["entry-2"] {
			t.Errorf("expected entry-1 and entry-2 in list, got %v", ids)
		}
	})

	t.Run("Finalize_Idempotent", func(t *testing.T) {
		if err := store.Finalize(ctx, "entry-1"); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if err := store.Finalize(ctx, "entry-1"); err != nil {
			t.Fatalf("second finalize should be a no-op, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(ctx, "entry-2"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := store.Load(ctx, "entry-2"); err != ports.ErrEntryNotFound {
			t.Fatalf("expected ErrEntryNotFound after delete, got %v", err)
		}
	})
}
