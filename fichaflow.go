package fichaflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/massanella/fichaflow/internal/logging"
	"github.com/massanella/fichaflow/pkg/ports"
	"github.com/massanella/fichaflow/pkg/wizard"
)

// Version is the engine release tag.
const Version = "0.4.1"

// Engine is the high-level entry point for the fichaflow library. It binds
// a template source, an entry store and a treatment catalog, and opens live
// editing sessions against them.
type Engine struct {
	loader        ports.TemplateLoader
	store         ports.EntryStore
	catalog       ports.Catalog
	logger        *slog.Logger
	autosaveDelay time.Duration
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects the template source.
func WithLoader(l ports.TemplateLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithStore injects the entry persistence backend.
func WithStore(s ports.EntryStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithCatalog injects the read-only treatment catalog.
func WithCatalog(c ports.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithAutosaveDelay overrides the debounce window of opened sessions.
func WithAutosaveDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.autosaveDelay = d
	}
}

// New initializes an Engine. A template loader and an entry store are
// required; the catalog is optional (templates without treatment nodes
// never consult it).
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		logger:        logging.NewNop(),
		autosaveDelay: wizard.DefaultAutosaveDelay,
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.loader == nil {
		return nil, fmt.Errorf("fichaflow: a template loader is required")
	}
	if eng.store == nil {
		return nil, fmt.Errorf("fichaflow: an entry store is required")
	}
	return eng, nil
}

// Loader returns the template source.
func (e *Engine) Loader() ports.TemplateLoader { return e.loader }

// Store returns the entry store.
func (e *Engine) Store() ports.EntryStore { return e.store }

// Catalog returns the treatment catalog, possibly nil.
func (e *Engine) Catalog() ports.Catalog { return e.catalog }

// EntrySession is one open clinical entry: the wizard session plus its
// autosaver. Exclusively owned by the surface that opened it.
type EntrySession struct {
	*wizard.Session
	Saver   *wizard.Autosaver
	EntryID string
}

// Open resolves the template, loads any persisted progress for the entry,
// and returns a live session with autosave attached. A missing entry
// starts fresh; any other load failure aborts.
func (e *Engine) Open(ctx context.Context, entryID, templateID string) (*EntrySession, error) {
	tpl, err := e.loader.LoadTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load template %q: %w", templateID, err)
	}

	session, err := wizard.NewSession(tpl)
	if err != nil {
		return nil, err
	}

	snap, err := e.store.Load(ctx, entryID)
	switch {
	case err == nil:
		session.Init(snap)
	case errors.Is(err, ports.ErrEntryNotFound):
		// New entry, empty maps.
	default:
		return nil, fmt.Errorf("failed to load entry %q: %w", entryID, err)
	}

	saver := wizard.NewAutosaver(session, e.store, entryID,
		wizard.WithDelay(e.autosaveDelay),
		wizard.WithLogger(e.logger),
	)

	e.logger.Debug("entry session opened", "entry_id", entryID, "template_id", templateID)
	return &EntrySession{Session: session, Saver: saver, EntryID: entryID}, nil
}

// Finalize flushes and finalizes the entry. On failure the entry stays
// editable and dirty.
func (es *EntrySession) Finalize(ctx context.Context) error {
	return es.Saver.Finalize(ctx)
}

// Flush forces an immediate save of the current state.
func (es *EntrySession) Flush(ctx context.Context) error {
	return es.Saver.Flush(ctx)
}

// Close cancels any pending autosave. Must be called when the editing
// surface closes; progress not yet flushed is lost by contract (the
// debounce window is short).
func (es *EntrySession) Close() {
	es.Saver.Close()
}
