package schema

import (
	"strings"
	"testing"
)

func validTemplate() *Template {
	return &Template{
		ID:          "general",
		Name:        "Ficha general",
		StartNodeID: "motivo",
		Nodes: []Node{
			{ID: "motivo", Type: NodeTypeDecision, Key: "motivo", Options: []string{"control", "urgencia"}},
			{ID: "exploracion", Type: NodeTypeStep, Fields: []StepField{
				{Key: "tension", Label: "Tensión", Type: "text"},
				{Key: "peso", Label: "Peso", Type: "number"},
			}},
			{ID: "tratamientos", Type: NodeTypeTreatment, Key: "tratamientos"},
			{ID: "presupuesto", Type: NodeTypeBudget, Key: "presupuesto", SourceNodeKey: "tratamientos"},
			{ID: "resumen", Type: NodeTypeReview},
		},
		Edges: []Edge{
			{From: "motivo", To: "exploracion"},
			{From: "exploracion", To: "tratamientos"},
			{From: "tratamientos", To: "presupuesto"},
			{From: "presupuesto", To: "resumen"},
		},
	}
}

func expectReason(t *testing.T, err error, fragment string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a validation error mentioning %q, got nil", fragment)
	}
	for _, e := range ValidationErrors(err) {
		if strings.Contains(e.Error(), fragment) {
			return
		}
	}
	t.Fatalf("no validation error mentions %q; got: %v", fragment, err)
}

func TestValidateAcceptsWellFormedTemplate(t *testing.T) {
	if err := Validate(validTemplate()); err != nil {
		t.Fatalf("expected valid template, got: %v", err)
	}
}

func TestValidateMissingStartNode(t *testing.T) {
	tpl := validTemplate()
	tpl.StartNodeID = "desconocido"
	expectReason(t, Validate(tpl), `start node "desconocido" not found`)

	tpl.StartNodeID = ""
	expectReason(t, Validate(tpl), "startNodeId is required")
}

func TestValidateDuplicateNodeIDs(t *testing.T) {
	tpl := validTemplate()
	tpl.Nodes = append(tpl.Nodes, Node{ID: "motivo", Type: NodeTypeText, Key: "otraClave"})
	expectReason(t, Validate(tpl), "duplicate node id")
}

func TestValidateDuplicateAnswerKeys(t *testing.T) {
	tpl := validTemplate()
	// A step field colliding with a keyed node.
	tpl.Nodes[1].Fields = append(tpl.Nodes[1].Fields, StepField{Key: "motivo", Label: "Motivo"})
	expectReason(t, Validate(tpl), `answer key "motivo" already declared`)
}

func TestValidateDanglingEdges(t *testing.T) {
	tpl := validTemplate()
	tpl.Edges = append(tpl.Edges, Edge{From: "fantasma", To: "motivo"})
	tpl.Edges = append(tpl.Edges, Edge{From: "motivo", To: "ninguno"})

	err := Validate(tpl)
	expectReason(t, err, `unknown source node "fantasma"`)
	expectReason(t, err, `unknown target node "ninguno"`)
}

func TestValidateUnreachableConditionedEdge(t *testing.T) {
	tpl := validTemplate()
	// Conditioned edge declared after the unconditional one from motivo.
	tpl.Edges = append(tpl.Edges, Edge{
		From: "motivo",
		To:   "tratamientos",
		When: &Condition{Key: "motivo", Value: "urgencia"},
	})
	expectReason(t, Validate(tpl), "can never match")
}

func TestValidateBudgetSourceMustBeTreatment(t *testing.T) {
	tpl := validTemplate()
	tpl.Nodes[3].SourceNodeKey = "motivo"
	expectReason(t, Validate(tpl), "want treatment")

	tpl.Nodes[3].SourceNodeKey = "inexistente"
	expectReason(t, Validate(tpl), `sourceNodeKey "inexistente" does not name any node`)

	tpl.Nodes[3].SourceNodeKey = ""
	expectReason(t, Validate(tpl), "requires sourceNodeKey")
}

func TestValidateReviewMustBeTerminal(t *testing.T) {
	tpl := validTemplate()
	tpl.Edges = append(tpl.Edges, Edge{From: "resumen", To: "motivo"})

	// The review edge both violates terminality and closes a cycle.
	err := Validate(tpl)
	expectReason(t, err, "review node must be terminal")
	expectReason(t, err, "cycle reachable from start node")
}

func TestValidateRejectsCycles(t *testing.T) {
	tpl := validTemplate()
	tpl.Edges = append(tpl.Edges, Edge{
		From: "presupuesto",
		To:   "motivo",
		When: &Condition{Key: "motivo", Value: "urgencia"},
	})
	expectReason(t, Validate(tpl), "cycle reachable from start node")
}

func TestValidateOptionNodesRequireOptions(t *testing.T) {
	tpl := validTemplate()
	tpl.Nodes[0].Options = nil
	expectReason(t, Validate(tpl), "decision node requires options")
}

func TestValidateKeyedNodeRequiresKey(t *testing.T) {
	tpl := validTemplate()
	tpl.Nodes[2].Key = ""
	expectReason(t, Validate(tpl), "treatment node requires a key")
}
