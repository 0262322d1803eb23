package wizard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/massanella/fichaflow/pkg/budget"
	"github.com/massanella/fichaflow/pkg/catalog"
	"github.com/massanella/fichaflow/pkg/ports"
	"github.com/massanella/fichaflow/pkg/schema"
)

// advanceTo drives the session forward until it sits on the given node.
func advanceTo(t *testing.T, s *Session, nodeID string) {
	t.Helper()
	for s.Current().ID != nodeID {
		require.True(t, s.Next(), "ran out of edges before reaching %s", nodeID)
	}
}

func sessionAtBudget(t *testing.T) *Session {
	t.Helper()
	s := newTestSession(t)
	s.SetAnswer("motivo", "control")
	s.SetAnswer("tratamientos", []catalog.Selection{
		{TratamientoID: "t-limpieza", Nombre: "Limpieza", Cantidad: 1, Precio: 30},
		{TratamientoID: "t-empaste", Nombre: "Empaste", Cantidad: 2, Precio: 45},
	})
	advanceTo(t, s, "presupuesto")
	return s
}

func TestBudgetDerivedOnArrival(t *testing.T) {
	s := sessionAtBudget(t)

	data, err := s.BudgetData("presupuesto")
	require.NoError(t, err)
	require.Len(t, data.Items, 2)
	assert.Equal(t, 120.0, data.Total)

	// The derived value is visible in both the answer and the computed map.
	_, snap := s.Snapshot()
	assert.Contains(t, snap.Answers, "presupuesto")
	assert.Contains(t, snap.Computed, "presupuesto")
}

func TestBudgetEmptyWhenSourceUnanswered(t *testing.T) {
	s := newTestSession(t)
	s.SetAnswer("motivo", "control")
	advanceTo(t, s, "presupuesto")

	data, err := s.BudgetData("presupuesto")
	require.NoError(t, err)
	assert.Empty(t, data.Items)
	assert.Zero(t, data.Total)
}

func TestBudgetEditWritesBack(t *testing.T) {
	s := sessionAtBudget(t)

	err := s.BudgetEdit("presupuesto", func(d *budget.Data, cfg *schema.BudgetConfig) error {
		return d.SetQuantity(cfg, 0, 3)
	})
	require.NoError(t, err)

	data, err := s.BudgetData("presupuesto")
	require.NoError(t, err)
	assert.Equal(t, 3, data.Items[0].Cantidad)
	assert.Equal(t, 180.0, data.Total)

	// The source treatment answer is never touched by budget edits.
	raw, _ := s.Answer("tratamientos")
	sels, err := catalog.DecodeSelections(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, sels[0].Cantidad)
}

func TestBudgetEditFailureLeavesStoredDataUntouched(t *testing.T) {
	s := sessionAtBudget(t)

	sentinel := errors.New("rechazado")
	err := s.BudgetEdit("presupuesto", func(d *budget.Data, cfg *schema.BudgetConfig) error {
		d.SetDiscountPercent(50)
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	data, _ := s.BudgetData("presupuesto")
	assert.Equal(t, 0, data.DescuentoPorcentaje)
	assert.Equal(t, 120.0, data.Total)
}

func TestBudgetSurvivesRevisit(t *testing.T) {
	s := sessionAtBudget(t)

	require.NoError(t, s.BudgetEdit("presupuesto", func(d *budget.Data, cfg *schema.BudgetConfig) error {
		d.SetDiscountPercent(10)
		return nil
	}))

	// Leave the node and come back: the manual edit must not be recomputed
	// away.
	require.True(t, s.Back())
	advanceTo(t, s, "presupuesto")

	data, err := s.BudgetData("presupuesto")
	require.NoError(t, err)
	assert.Equal(t, 10, data.DescuentoPorcentaje)
	assert.Equal(t, 108.0, data.Total)
}

func TestBudgetResumeUsesPersistedValue(t *testing.T) {
	s := newTestSession(t)
	// A resumed entry already carries an edited budget from a prior visit.
	s.Init(ports.EntrySnapshot{
		Answers: map[string]any{
			"motivo": "control",
			"tratamientos": []any{
				map[string]any{"tratamientoId": "t-limpieza", "nombre": "Limpieza", "cantidad": float64(1), "precio": float64(30)},
			},
			"presupuesto": map[string]any{
				"items": []any{
					map[string]any{"descripcion": "Limpieza", "cantidad": float64(4), "precioUnitario": float64(25), "total": float64(100), "tratamientoId": "t-limpieza"},
				},
				"subtotal": float64(100), "descuentos": float64(0), "total": float64(100),
			},
		},
	})

	advanceTo(t, s, "presupuesto")

	data, err := s.BudgetData("presupuesto")
	require.NoError(t, err)
	require.Len(t, data.Items, 1)
	assert.Equal(t, 4, data.Items[0].Cantidad, "persisted edits must be used verbatim, not re-derived")
	assert.Equal(t, 25.0, data.Items[0].PrecioUnitario)
}

func TestBudgetDataRejectsWrongNodeKind(t *testing.T) {
	s := newTestSession(t)
	_, err := s.BudgetData("motivo")
	assert.Error(t, err)

	err = s.BudgetEdit("motivo", func(d *budget.Data, cfg *schema.BudgetConfig) error { return nil })
	assert.Error(t, err)
}

func TestProcedureTargetsAndNotes(t *testing.T) {
	s := newTestSession(t)
	s.SetAnswer("motivo", "control")
	s.SetAnswer("tratamientos", []catalog.Selection{
		{TratamientoID: "t-endo", Nombre: "Endodoncia", Cantidad: 1, Precio: 180},
	})
	advanceTo(t, s, "procedimiento")

	targets, err := s.ProcedureTargets("procedimiento")
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "t-endo", targets[0].TratamientoID)

	require.NoError(t, s.SetProcedureNote("procedimiento", "t-endo", "Instrumentación hasta lima 25"))
	require.NoError(t, s.SetProcedureNote("procedimiento", "t-endo", "Obturación con gutapercha"))

	raw, ok := s.Answer("procedimiento")
	require.True(t, ok)
	notes, ok := raw.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Obturación con gutapercha", notes["t-endo"])
}

func TestProcedureTargetsEmptySource(t *testing.T) {
	s := newTestSession(t)
	targets, err := s.ProcedureTargets("procedimiento")
	require.NoError(t, err)
	assert.Empty(t, targets)

	_, err = s.ProcedureTargets("motivo")
	assert.Error(t, err)
}
