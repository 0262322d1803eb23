package wizard

import (
	"fmt"

	"github.com/massanella/fichaflow/pkg/budget"
	"github.com/massanella/fichaflow/pkg/catalog"
	"github.com/massanella/fichaflow/pkg/schema"
)

// ensureBudget initializes a budget node's data the first time the node is
// visited. A pre-existing budget answer (resuming an entry) is used
// verbatim so manual edits are never discarded by re-initialization. A
// missing source answer degrades to an empty, still-addable budget.
func (s *Session) ensureBudget(nodeID string) {
	node := s.tpl.NodeByID(nodeID)
	if node == nil || node.Type != schema.NodeTypeBudget || node.Key == "" {
		return
	}

	s.mu.Lock()
	if _, exists := s.answers[node.Key]; exists {
		s.mu.Unlock()
		return
	}
	source := s.answers[node.SourceNodeKey]
	s.mu.Unlock()

	selections, err := catalog.DecodeSelections(source)
	if err != nil {
		// A malformed source answer degrades to an empty budget rather
		// than blocking navigation.
		selections = nil
	}
	data := budget.Derive(selections)

	s.mu.Lock()
	// Re-check under lock: a concurrent resume seed wins.
	_, exists := s.answers[node.Key]
	if !exists {
		s.answers[node.Key] = data
		s.computed[node.Key] = data.Clone()
		s.rev++
	}
	s.mu.Unlock()
	if !exists {
		s.notify()
	}
}

// BudgetData returns the budget of the given node, deriving it on first
// access. The returned value is a copy; mutations go through the
// BudgetEdit method.
func (s *Session) BudgetData(nodeID string) (*budget.Data, error) {
	node := s.tpl.NodeByID(nodeID)
	if node == nil || node.Type != schema.NodeTypeBudget {
		return nil, fmt.Errorf("wizard: node %q is not a budget node", nodeID)
	}
	s.ensureBudget(nodeID)

	s.mu.Lock()
	raw := s.answers[node.Key]
	s.mu.Unlock()

	data, err := budget.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("wizard: budget answer for %q is malformed: %w", node.Key, err)
	}
	return data.Clone(), nil
}

// BudgetEdit applies one editing operation to a budget node's data and
// writes the result back into the node's own answer (never into the source
// treatment node), recomputing the derived totals. The edit callback
// receives the node's configuration for flag gating; returning an error
// leaves the stored budget untouched.
func (s *Session) BudgetEdit(nodeID string, edit func(d *budget.Data, cfg *schema.BudgetConfig) error) error {
	node := s.tpl.NodeByID(nodeID)
	if node == nil || node.Type != schema.NodeTypeBudget {
		return fmt.Errorf("wizard: node %q is not a budget node", nodeID)
	}
	data, err := s.BudgetData(nodeID)
	if err != nil {
		return err
	}
	if err := edit(data, node.Budget); err != nil {
		return err
	}

	s.mu.Lock()
	s.answers[node.Key] = data
	s.computed[node.Key] = data.Clone()
	s.rev++
	s.mu.Unlock()
	s.notify()
	return nil
}

// ProcedureTargets resolves the treatment selections a procedure node
// annotates. An unanswered source yields an empty slice, not an error.
func (s *Session) ProcedureTargets(nodeID string) ([]catalog.Selection, error) {
	node := s.tpl.NodeByID(nodeID)
	if node == nil || node.Type != schema.NodeTypeProcedure {
		return nil, fmt.Errorf("wizard: node %q is not a procedure node", nodeID)
	}
	s.mu.Lock()
	source := s.answers[node.SourceNodeKey]
	s.mu.Unlock()
	return catalog.DecodeSelections(source)
}

// SetProcedureNote records the free-text annotation for one selected
// treatment under the procedure node's own answer key.
func (s *Session) SetProcedureNote(nodeID, tratamientoID, note string) error {
	node := s.tpl.NodeByID(nodeID)
	if node == nil || node.Type != schema.NodeTypeProcedure {
		return fmt.Errorf("wizard: node %q is not a procedure node", nodeID)
	}

	s.mu.Lock()
	notes, _ := s.answers[node.Key].(map[string]any)
	merged := make(map[string]any, len(notes)+1)
	for k, v := range notes {
		merged[k] = v
	}
	merged[tratamientoID] = note
	s.answers[node.Key] = merged
	s.rev++
	s.mu.Unlock()
	s.notify()
	return nil
}
