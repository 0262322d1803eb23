package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/massanella/fichaflow/pkg/adapters/memory"
	"github.com/massanella/fichaflow/pkg/ports"
)

func TestMaskingHidesMatchingKeys(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewStore()
	store := Chain(backend, NewMaskingMiddleware([]string{"(?i)dni", "paciente"}))

	snap := ports.EntrySnapshot{
		Answers: map[string]any{
			"motivo":         "control",
			"pacienteNombre": "María López",
			"historial":      map[string]any{"DNI": "12345678Z", "peso": 70},
		},
		Computed: map[string]any{},
	}
	require.NoError(t, store.Save(ctx, "e1", snap))

	stored, err := backend.Load(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "control", stored.Answers["motivo"])
	assert.Equal(t, "***", stored.Answers["pacienteNombre"])

	historial := stored.Answers["historial"].(map[string]any)
	assert.Equal(t, "***", historial["DNI"], "nested keys are masked too")
	assert.Equal(t, 70, historial["peso"])
}

func TestMaskingDoesNotMutateCallerSnapshot(t *testing.T) {
	ctx := context.Background()
	store := Chain(memory.NewStore(), NewMaskingMiddleware([]string{"paciente"}))

	snap := ports.EntrySnapshot{
		Answers:  map[string]any{"pacienteNombre": "María López"},
		Computed: map[string]any{},
	}
	require.NoError(t, store.Save(ctx, "e1", snap))

	assert.Equal(t, "María López", snap.Answers["pacienteNombre"],
		"the live session must keep the real value")
}

func TestMaskingPassesThroughOtherOperations(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewStore()
	store := Chain(backend, NewMaskingMiddleware([]string{"paciente"}))

	require.NoError(t, store.Save(ctx, "e1", ports.EntrySnapshot{Answers: map[string]any{"a": 1}}))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1"}, ids)

	require.NoError(t, store.Finalize(ctx, "e1"))
	assert.True(t, backend.Finalized("e1"))

	require.NoError(t, store.Delete(ctx, "e1"))
	_, err = store.Load(ctx, "e1")
	assert.ErrorIs(t, err, ports.ErrEntryNotFound)
}
