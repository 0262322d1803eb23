package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/massanella/fichaflow/pkg/ports"
	"github.com/massanella/fichaflow/pkg/schema"
)

// Loader implements ports.TemplateLoader over a directory of template
// documents. A template with id "periodoncia" resolves to
// periodoncia.json, periodoncia.yaml or periodoncia.yml.
type Loader struct {
	BasePath string
}

// NewLoader creates a Loader rooted at basePath.
func NewLoader(basePath string) *Loader {
	return &Loader{BasePath: basePath}
}

// LoadTemplate reads and parses one template document.
func (l *Loader) LoadTemplate(ctx context.Context, templateID string) (*schema.Template, error) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(l.BasePath, templateID+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read template %s: %w", path, err)
		}
		if ext == ".json" {
			return schema.ParseJSON(data)
		}
		return schema.ParseYAML(data)
	}
	return nil, ports.ErrTemplateNotFound
}

// ListTemplates returns the template IDs available in the directory.
func (l *Loader) ListTemplates(ctx context.Context) ([]string, error) {
	dirEntries, err := os.ReadDir(l.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read template directory: %w", err)
	}

	seen := make(map[string]bool)
	var ids []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		ext := filepath.Ext(name)
		switch ext {
		case ".json", ".yaml", ".yml":
			id := strings.TrimSuffix(name, ext)
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}
