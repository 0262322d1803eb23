package fichaflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/massanella/fichaflow/pkg/adapters/memory"
	"github.com/massanella/fichaflow/pkg/schema"
	"github.com/massanella/fichaflow/pkg/wizard"
)

func testTemplate() *schema.Template {
	return &schema.Template{
		ID:          "general",
		Name:        "Ficha general",
		StartNodeID: "motivo",
		Nodes: []schema.Node{
			{ID: "motivo", Type: schema.NodeTypeDecision, Title: "Motivo", Key: "motivo", Options: []string{"control", "urgencia"}},
			{ID: "notas", Type: schema.NodeTypeText, Title: "Notas", Key: "notas"},
			{ID: "resumen", Type: schema.NodeTypeReview, Title: "Resumen"},
		},
		Edges: []schema.Edge{
			{From: "motivo", To: "notas"},
			{From: "notas", To: "resumen"},
		},
	}
}

func testEngine(t *testing.T) (*Engine, *memory.Store) {
	t.Helper()
	loader := memory.NewLoader()
	loader.Add(testTemplate())
	store := memory.NewStore()

	engine, err := New(
		WithLoader(loader),
		WithStore(store),
		WithAutosaveDelay(10*time.Millisecond),
	)
	require.NoError(t, err)
	return engine, store
}

func TestNewRequiresLoaderAndStore(t *testing.T) {
	_, err := New(WithStore(memory.NewStore()))
	assert.Error(t, err)

	loader := memory.NewLoader()
	_, err = New(WithLoader(loader))
	assert.Error(t, err)

	_, err = New(WithLoader(loader), WithStore(memory.NewStore()))
	assert.NoError(t, err)
}

func TestOpenFreshEntry(t *testing.T) {
	engine, _ := testEngine(t)

	es, err := engine.Open(context.Background(), "e1", "general")
	require.NoError(t, err)
	defer es.Close()

	assert.Equal(t, "e1", es.EntryID)
	assert.Equal(t, "motivo", es.Current().ID)
	assert.Equal(t, wizard.StatusClean, es.Status())
}

func TestOpenUnknownTemplate(t *testing.T) {
	engine, _ := testEngine(t)
	_, err := engine.Open(context.Background(), "e1", "nada")
	assert.Error(t, err)
}

func TestOpenResumesPersistedEntry(t *testing.T) {
	engine, _ := testEngine(t)
	ctx := context.Background()

	es, err := engine.Open(ctx, "e1", "general")
	require.NoError(t, err)
	es.SetAnswer("motivo", "urgencia")
	require.NoError(t, es.Flush(ctx))
	es.Close()

	// A second open of the same entry sees the saved progress.
	resumed, err := engine.Open(ctx, "e1", "general")
	require.NoError(t, err)
	defer resumed.Close()

	v, ok := resumed.Answer("motivo")
	require.True(t, ok)
	assert.Equal(t, "urgencia", v)
}

func TestEntrySessionFinalize(t *testing.T) {
	engine, store := testEngine(t)
	ctx := context.Background()

	es, err := engine.Open(ctx, "e1", "general")
	require.NoError(t, err)

	es.SetAnswer("motivo", "control")
	require.NoError(t, es.Finalize(ctx))
	es.Close()

	assert.True(t, store.Finalized("e1"))
	snap, err := store.Load(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "control", snap.Answers["motivo"])
}
