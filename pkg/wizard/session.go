package wizard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/massanella/fichaflow/pkg/flow"
	"github.com/massanella/fichaflow/pkg/ports"
	"github.com/massanella/fichaflow/pkg/schema"
)

// Status describes the save state of the session as a whole.
type Status string

const (
	// StatusClean means the last durably written snapshot matches the
	// current state.
	StatusClean Status = "clean"
	// StatusDirty means there are edits not yet durably written.
	StatusDirty Status = "dirty"
	// StatusSaving means a save is in flight. New edits during a save keep
	// the session dirty after the save resolves.
	StatusSaving Status = "saving"
)

// ErrNoTemplate is returned when a session is created without a template.
var ErrNoTemplate = errors.New("wizard: template is required")

// Session is the mutable run of a template against one clinical entry.
type Session struct {
	mu sync.Mutex

	tpl      *schema.Template
	answers  map[string]any
	computed map[string]any
	history  []string

	// rev increments on every dirtying mutation. savedRev is the revision
	// last durably written; the session is clean iff they match. "clean"
	// may only be reported for the exact state that was actually written.
	rev      uint64
	savedRev uint64
	saving   bool
	lastErr  error

	seeded   bool
	onChange func()
}

// NewSession creates a session positioned at the template's start node with
// empty answer and computed maps. Seeding a resumed entry happens through
// Init.
func NewSession(tpl *schema.Template) (*Session, error) {
	if tpl == nil {
		return nil, ErrNoTemplate
	}
	if tpl.NodeByID(tpl.StartNodeID) == nil {
		return nil, fmt.Errorf("wizard: start node %q not found in template %q", tpl.StartNodeID, tpl.ID)
	}
	return &Session{
		tpl:      tpl,
		answers:  make(map[string]any),
		computed: make(map[string]any),
		history:  []string{tpl.StartNodeID},
	}, nil
}

// Init seeds the session from a persisted snapshot when resuming an
// in-progress entry. Idempotent: only the first call per session has any
// effect, so a remount-triggered re-initialization cannot wipe progress.
func (s *Session) Init(snap ports.EntrySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded {
		return
	}
	s.seeded = true
	for k, v := range snap.Answers {
		s.answers[k] = v
	}
	for k, v := range snap.Computed {
		s.computed[k] = v
	}
}

// OnChange registers a callback fired after every dirtying mutation, while
// the session lock is released. Used by the Autosaver to (re)start its
// debounce timer.
func (s *Session) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Template returns the immutable template this session runs.
func (s *Session) Template() *schema.Template { return s.tpl }

// Current returns the node at the top of the history stack.
func (s *Session) Current() *schema.Node {
	s.mu.Lock()
	id := s.history[len(s.history)-1]
	s.mu.Unlock()
	return s.tpl.NodeByID(id)
}

// History returns a copy of the node history stack. Its last element is the
// current node.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// SetAnswer writes a value into the answer map and marks the session dirty.
// No field-level validation happens here; that belongs to the node-specific
// widget.
func (s *Session) SetAnswer(key string, value any) {
	s.mu.Lock()
	s.answers[key] = value
	s.rev++
	s.mu.Unlock()
	s.notify()
}

// Answer returns the stored value for an answer key.
func (s *Session) Answer(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.answers[key]
	return v, ok
}

// Next advances to the node selected by the navigator for the current
// answers. Returns false when no edge matches; the caller is expected to
// invoke the finalize path instead (by convention this happens at a review
// node).
func (s *Session) Next() bool {
	s.mu.Lock()
	currentID := s.history[len(s.history)-1]
	nextID, ok := flow.NextNode(s.tpl, currentID, s.answers)
	if ok {
		s.history = append(s.history, nextID)
	}
	s.mu.Unlock()
	if ok {
		s.ensureBudget(nextID)
	}
	return ok
}

// Back pops the history stack. The floor is one entry: the start node is
// never popped. Popping does not erase the popped node's answers; a user
// can revisit a decision without losing sibling-step data. Answers left on
// an abandoned conditional branch are retained deliberately.
func (s *Session) Back() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) <= 1 {
		return false
	}
	s.history = s.history[:len(s.history)-1]
	return true
}

// Progress reports the current step index against an approximate total.
// Because the graph is conditional the total is an estimate derived from
// the node count, not an exact remaining-step count.
func (s *Session) Progress() (step, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history), len(s.tpl.Nodes)
}

// Status reports the save state. A transient save error does not introduce
// a separate state; it annotates Dirty and is readable via LastError.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.saving:
		return StatusSaving
	case s.rev == s.savedRev:
		return StatusClean
	default:
		return StatusDirty
	}
}

// LastError returns the error of the most recent failed save, or nil. It is
// cleared once the current state is durably written.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Snapshot returns the current revision together with a deep copy of the
// durable state. A save call must pass the revision back to MarkSaved so
// "clean" is only reported for the exact state that was written.
func (s *Session) Snapshot() (uint64, ports.EntrySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev, ports.EntrySnapshot{Answers: s.answers, Computed: s.computed}.Clone()
}

// MarkSaving flags a save in flight.
func (s *Session) MarkSaving() {
	s.mu.Lock()
	s.saving = true
	s.mu.Unlock()
}

// MarkSaved records that the snapshot taken at rev was durably written.
// The session transitions to clean only if no new edit occurred since the
// save was issued.
func (s *Session) MarkSaved(rev uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if rev > s.savedRev {
		s.savedRev = rev
	}
	if s.rev == s.savedRev {
		s.lastErr = nil
	}
}

// MarkSaveFailed records a failed save. The session stays dirty and the
// error is surfaced via LastError; no automatic retry happens, but any
// subsequent edit's debounce timer will attempt the write again.
func (s *Session) MarkSaveFailed(err error) {
	s.mu.Lock()
	s.saving = false
	s.lastErr = err
	s.mu.Unlock()
}

// ForceDirty re-enters the dirty state with an error annotation even though
// the answer maps are unchanged. Used when finalize fails after a
// successful flush: the entry must stay editable and dirty.
func (s *Session) ForceDirty(err error) {
	s.mu.Lock()
	s.rev++
	s.lastErr = err
	s.mu.Unlock()
}

// notify fires the change callback outside the session lock.
func (s *Session) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
