package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/massanella/fichaflow/internal/logging"
	"github.com/massanella/fichaflow/internal/metrics"
	"github.com/massanella/fichaflow/pkg/ports"
)

// DefaultAutosaveDelay is the debounce window: bursts of edits within it
// coalesce into one outbound write.
const DefaultAutosaveDelay = time.Second

// Autosaver debounces session mutations into persistence calls. It owns a
// single cancellable timer; teardown cancels it unconditionally so no save
// fires after the editing surface closes.
//
// Persistence failures never escape into navigation or answer-mutation
// paths: they are converted into session-state annotations here.
type Autosaver struct {
	mu     sync.Mutex
	saveMu sync.Mutex // serializes outbound writes

	session *Session
	store   ports.EntryStore
	entryID string
	delay   time.Duration
	logger  *slog.Logger

	timer  *time.Timer
	closed bool
}

// AutosaverOption configures the Autosaver.
type AutosaverOption func(*Autosaver)

// WithDelay overrides the debounce window.
func WithDelay(d time.Duration) AutosaverOption {
	return func(a *Autosaver) {
		a.delay = d
	}
}

// WithLogger configures a logger for save outcomes.
func WithLogger(logger *slog.Logger) AutosaverOption {
	return func(a *Autosaver) {
		a.logger = logger
	}
}

// NewAutosaver wires an autosaver to the session's change notifications.
func NewAutosaver(session *Session, store ports.EntryStore, entryID string, opts ...AutosaverOption) *Autosaver {
	a := &Autosaver{
		session: session,
		store:   store,
		entryID: entryID,
		delay:   DefaultAutosaveDelay,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	session.OnChange(a.schedule)
	return a
}

// schedule (re)starts the debounce timer. Called on every dirtying
// mutation.
func (a *Autosaver) schedule() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
}

// fire is the timer expiry path.
func (a *Autosaver) fire() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	a.mu.Unlock()

	if err := a.save(context.Background()); err != nil {
		a.logger.Warn("autosave failed; entry stays dirty",
			"entry_id", a.entryID,
			"err", err,
		)
	}
}

// save snapshots the session at the moment it is issued and writes that
// exact snapshot. If the user mutates state before the write resolves, the
// session re-enters dirty: MarkSaved only cleans the saved revision.
func (a *Autosaver) save(ctx context.Context) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	rev, snap := a.session.Snapshot()
	a.session.MarkSaving()

	if err := a.store.Save(ctx, a.entryID, snap); err != nil {
		a.session.MarkSaveFailed(err)
		metrics.SaveFailures.Inc()
		return err
	}

	a.session.MarkSaved(rev)
	metrics.Saves.Inc()
	a.logger.Debug("entry snapshot written", "entry_id", a.entryID, "rev", rev)
	return nil
}

// Flush cancels any pending timer and performs an immediate, synchronous
// save of the current state.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	return a.save(ctx)
}

// Finalize forces a non-debounced flush-save and then issues the terminal
// finalize call. A failure at either step leaves the entry editable and
// dirty, never partially finalized.
func (a *Autosaver) Finalize(ctx context.Context) error {
	if err := a.Flush(ctx); err != nil {
		return fmt.Errorf("flush before finalize: %w", err)
	}
	if err := a.store.Finalize(ctx, a.entryID); err != nil {
		a.session.ForceDirty(err)
		return fmt.Errorf("finalize entry %s: %w", a.entryID, err)
	}
	metrics.Finalizations.Inc()
	a.logger.Info("entry finalized", "entry_id", a.entryID)
	return nil
}

// Close cancels the pending timer unconditionally. No save fires after
// Close returns.
func (a *Autosaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
