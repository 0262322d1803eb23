package memory

import (
	"context"
	"testing"

	"github.com/massanella/fichaflow/pkg/ports"
	portstests "github.com/massanella/fichaflow/pkg/ports/tests"
)

func TestStoreContract(t *testing.T) {
	portstests.EntryStoreContractTest(t, NewStore())
}

func TestStoreIsolatesStoredState(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	snap := ports.EntrySnapshot{
		Answers:  map[string]any{"motivo": "control"},
		Computed: map[string]any{},
	}
	if err := store.Save(ctx, "e1", snap); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Mutating the caller's map after save must not leak into the store.
	snap.Answers["motivo"] = "manipulado"
	got, err := store.Load(ctx, "e1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Answers["motivo"] != "control" {
		t.Errorf("store shares map storage with caller: %v", got.Answers)
	}

	// Same on the read side.
	got.Answers["motivo"] = "otra vez"
	again, _ := store.Load(ctx, "e1")
	if again.Answers["motivo"] != "control" {
		t.Errorf("loads share map storage: %v", again.Answers)
	}
}

func TestStoreFinalizedFlag(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if err := store.Finalize(ctx, "nada"); err != ports.ErrEntryNotFound {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}

	store.Save(ctx, "e1", ports.EntrySnapshot{Answers: map[string]any{}})
	if store.Finalized("e1") {
		t.Error("entry finalized before Finalize")
	}
	if err := store.Finalize(ctx, "e1"); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if !store.Finalized("e1") {
		t.Error("finalized flag not set")
	}

	store.Delete(ctx, "e1")
	if store.Finalized("e1") {
		t.Error("delete must clear the finalized flag")
	}
}
