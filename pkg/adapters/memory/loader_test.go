package memory

import (
	"context"
	"testing"

	"github.com/massanella/fichaflow/pkg/catalog"
	"github.com/massanella/fichaflow/pkg/ports"
	"github.com/massanella/fichaflow/pkg/schema"
)

func TestLoader(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader()
	loader.Add(&schema.Template{ID: "general", StartNodeID: "inicio"})

	tpl, err := loader.LoadTemplate(ctx, "general")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if tpl.ID != "general" {
		t.Errorf("wrong template: %+v", tpl)
	}

	if _, err := loader.LoadTemplate(ctx, "inexistente"); err != ports.ErrTemplateNotFound {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}

	ids, err := loader.ListTemplates(ctx)
	if err != nil || len(ids) != 1 || ids[0] != "general" {
		t.Errorf("list mismatch: %v (%v)", ids, err)
	}
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog([]catalog.Treatment{
		{ID: "t1", Nombre: "Limpieza", Precio: 30},
		{ID: "t2", Nombre: "Empaste", Precio: 45},
	})

	all, err := cat.Treatments(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("treatments mismatch: %v (%v)", all, err)
	}

	tr, found, err := cat.TreatmentByID(ctx, "t2")
	if err != nil || !found || tr.Nombre != "Empaste" {
		t.Errorf("lookup mismatch: %+v found=%v err=%v", tr, found, err)
	}

	if _, found, _ := cat.TreatmentByID(ctx, "t9"); found {
		t.Error("unknown id reported as found")
	}
}
