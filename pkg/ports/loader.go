package ports

import (
	"context"
	"errors"

	"github.com/massanella/fichaflow/pkg/catalog"
	"github.com/massanella/fichaflow/pkg/schema"
)

// ErrTemplateNotFound is returned when a template ID cannot be resolved.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateLoader resolves published templates by ID. The engine never
// mutates a loaded template; versioning and publishing live outside.
type TemplateLoader interface {
	// LoadTemplate retrieves a resolved template.
	// Returns ErrTemplateNotFound if the ID is unknown.
	LoadTemplate(ctx context.Context, templateID string) (*schema.Template, error)

	// ListTemplates returns the available template IDs.
	ListTemplates(ctx context.Context) ([]string, error)
}

// Catalog supplies the read-only treatment list consumed by treatment
// nodes. Injected data, never fetched by the engine itself.
type Catalog interface {
	// Treatments returns the full catalog.
	Treatments(ctx context.Context) ([]catalog.Treatment, error)

	// TreatmentByID resolves one record. Returns false when unknown.
	TreatmentByID(ctx context.Context, id string) (catalog.Treatment, bool, error)
}
