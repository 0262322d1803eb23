package graph

import (
	"strings"
	"testing"

	"github.com/massanella/fichaflow/pkg/schema"
)

func diagramTemplate() *schema.Template {
	return &schema.Template{
		ID:          "general",
		StartNodeID: "motivo",
		Nodes: []schema.Node{
			{ID: "motivo", Type: schema.NodeTypeDecision, Title: "Motivo de consulta", Key: "motivo", Options: []string{"control", "urgencia"}},
			{ID: "plan-tratamiento", Type: schema.NodeTypeTreatment, Title: "Tratamientos", Key: "tratamientos"},
			{ID: "presupuesto", Type: schema.NodeTypeBudget, Title: "Presupuesto", Key: "presupuesto", SourceNodeKey: "tratamientos"},
			{ID: "resumen", Type: schema.NodeTypeReview, Title: "Resumen"},
		},
		Edges: []schema.Edge{
			{From: "motivo", To: "plan-tratamiento", When: &schema.Condition{Key: "motivo", Value: "urgencia"}},
			{From: "motivo", To: "resumen"},
			{From: "plan-tratamiento", To: "presupuesto"},
			{From: "presupuesto", To: "resumen"},
		},
	}
}

func TestGenerateMermaidShapes(t *testing.T) {
	out := GenerateMermaid(diagramTemplate(), nil)

	if !strings.HasPrefix(out, "graph TD\n") {
		t.Fatalf("missing header: %q", out[:20])
	}
	// Start node is a circle even though it is a decision.
	if !strings.Contains(out, `motivo(("Motivo de consulta"))`) {
		t.Errorf("start node shape wrong:\n%s", out)
	}
	if !strings.Contains(out, `presupuesto[["Presupuesto"]]`) {
		t.Errorf("budget node shape wrong:\n%s", out)
	}
	if !strings.Contains(out, `resumen(["Resumen"])`) {
		t.Errorf("review node shape wrong:\n%s", out)
	}
}

func TestGenerateMermaidEdges(t *testing.T) {
	out := GenerateMermaid(diagramTemplate(), nil)

	if !strings.Contains(out, `motivo -- "motivo = urgencia" --> plan_tratamiento`) {
		t.Errorf("conditioned edge label missing:\n%s", out)
	}
	if !strings.Contains(out, "motivo --> resumen") {
		t.Errorf("unconditional edge missing:\n%s", out)
	}
	// Hyphenated ids are sanitized consistently on both declaration and edges.
	if !strings.Contains(out, `plan_tratamiento["Tratamientos"]`) {
		t.Errorf("sanitized id missing:\n%s", out)
	}
}

func TestGenerateMermaidOverlay(t *testing.T) {
	out := GenerateMermaid(diagramTemplate(), &Overlay{
		VisitedNodes: []string{"motivo", "plan-tratamiento"},
		CurrentNode:  "plan-tratamiento",
	})

	if !strings.Contains(out, "class motivo visited;") {
		t.Errorf("visited class missing:\n%s", out)
	}
	if !strings.Contains(out, "class plan_tratamiento current;") {
		t.Errorf("current class missing:\n%s", out)
	}
	if strings.Contains(out, "class plan_tratamiento visited;") {
		t.Errorf("current node must not also be visited:\n%s", out)
	}
}
