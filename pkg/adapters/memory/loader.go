package memory

import (
	"context"
	"sync"

	"github.com/massanella/fichaflow/pkg/catalog"
	"github.com/massanella/fichaflow/pkg/ports"
	"github.com/massanella/fichaflow/pkg/schema"
)

// Loader implements ports.TemplateLoader over an in-memory map.
type Loader struct {
	mu        sync.RWMutex
	templates map[string]*schema.Template
}

// NewLoader creates an empty in-memory template loader.
func NewLoader() *Loader {
	return &Loader{templates: make(map[string]*schema.Template)}
}

// Add registers a template under its own ID.
func (l *Loader) Add(tpl *schema.Template) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.templates[tpl.ID] = tpl
}

// LoadTemplate resolves a template by ID.
func (l *Loader) LoadTemplate(ctx context.Context, templateID string) (*schema.Template, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tpl, ok := l.templates[templateID]
	if !ok {
		return nil, ports.ErrTemplateNotFound
	}
	return tpl, nil
}

// ListTemplates returns the registered template IDs.
func (l *Loader) ListTemplates(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.templates))
	for id := range l.templates {
		ids = append(ids, id)
	}
	return ids, nil
}

// Catalog implements ports.Catalog over a fixed treatment list.
type Catalog struct {
	treatments []catalog.Treatment
}

// NewCatalog creates a catalog from the given records.
func NewCatalog(treatments []catalog.Treatment) *Catalog {
	return &Catalog{treatments: treatments}
}

// Treatments returns the full catalog.
func (c *Catalog) Treatments(ctx context.Context) ([]catalog.Treatment, error) {
	out := make([]catalog.Treatment, len(c.treatments))
	copy(out, c.treatments)
	return out, nil
}

// TreatmentByID resolves one record.
func (c *Catalog) TreatmentByID(ctx context.Context, id string) (catalog.Treatment, bool, error) {
	for _, t := range c.treatments {
		if t.ID == id {
			return t, true, nil
		}
	}
	return catalog.Treatment{}, false, nil
}
