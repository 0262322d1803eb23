package schema

import "fmt"

// Validate checks a template for authoring errors. It is intended to run at
// template-publish time; the runtime trusts the schema it is handed.
//
// Checks: start node existence, unique node ids, unique answer keys across
// the whole template (step fields included), dangling edge endpoints,
// conditioned edges declared after an unconditional edge from the same node
// (unreachable: the unconditional edge always wins first), budget/procedure
// source references naming a treatment node, terminal review nodes, and
// cycles reachable from the start node.
//
// Returns an AggregateError with every failure found, or nil.
func Validate(tpl *Template) error {
	var errs []error

	if tpl.StartNodeID == "" {
		errs = append(errs, &ValidationError{Reason: "startNodeId is required"})
	} else if tpl.NodeByID(tpl.StartNodeID) == nil {
		errs = append(errs, &ValidationError{Reason: fmt.Sprintf("start node %q not found", tpl.StartNodeID)})
	}

	// Unique node ids.
	seenIDs := make(map[string]bool)
	for i := range tpl.Nodes {
		n := &tpl.Nodes[i]
		if n.ID == "" {
			errs = append(errs, &ValidationError{Reason: fmt.Sprintf("node at index %d has no id", i)})
			continue
		}
		if seenIDs[n.ID] {
			errs = append(errs, &ValidationError{NodeID: n.ID, Reason: "duplicate node id"})
		}
		seenIDs[n.ID] = true
	}

	// Unique answer keys across the whole template.
	seenKeys := make(map[string]string) // key -> owning node id
	for i := range tpl.Nodes {
		n := &tpl.Nodes[i]
		if n.Keyed() && n.Key == "" {
			errs = append(errs, &ValidationError{NodeID: n.ID, Reason: fmt.Sprintf("%s node requires a key", n.Type)})
		}
		for _, key := range n.AnswerKeys() {
			if key == "" {
				errs = append(errs, &ValidationError{NodeID: n.ID, Reason: "step field with empty key"})
				continue
			}
			if owner, dup := seenKeys[key]; dup {
				errs = append(errs, &ValidationError{NodeID: n.ID, Reason: fmt.Sprintf("answer key %q already declared by node %q", key, owner)})
				continue
			}
			seenKeys[key] = n.ID
		}
	}

	// Edge endpoints and unreachable conditioned edges.
	unconditionalSeen := make(map[string]bool)
	for i, e := range tpl.Edges {
		if tpl.NodeByID(e.From) == nil {
			errs = append(errs, &ValidationError{Reason: fmt.Sprintf("edge %d: unknown source node %q", i, e.From)})
		}
		if tpl.NodeByID(e.To) == nil {
			errs = append(errs, &ValidationError{Reason: fmt.Sprintf("edge %d: unknown target node %q", i, e.To)})
		}
		if e.When == nil {
			unconditionalSeen[e.From] = true
		} else if unconditionalSeen[e.From] {
			errs = append(errs, &ValidationError{NodeID: e.From, Reason: fmt.Sprintf("edge %d: conditioned edge declared after an unconditional edge and can never match", i)})
		}
	}

	// Per-kind configuration.
	for i := range tpl.Nodes {
		n := &tpl.Nodes[i]
		switch n.Type {
		case NodeTypeDecision, NodeTypeChecklist, NodeTypeDiagnosis:
			if len(n.Options) == 0 {
				errs = append(errs, &ValidationError{NodeID: n.ID, Reason: fmt.Sprintf("%s node requires options", n.Type)})
			}
		case NodeTypeStep:
			if len(n.Fields) == 0 {
				errs = append(errs, &ValidationError{NodeID: n.ID, Reason: "step node requires fields"})
			}
		case NodeTypeBudget, NodeTypeProcedure:
			if n.SourceNodeKey == "" {
				errs = append(errs, &ValidationError{NodeID: n.ID, Reason: fmt.Sprintf("%s node requires sourceNodeKey", n.Type)})
			} else if src := tpl.NodeByKey(n.SourceNodeKey); src == nil {
				errs = append(errs, &ValidationError{NodeID: n.ID, Reason: fmt.Sprintf("sourceNodeKey %q does not name any node", n.SourceNodeKey)})
			} else if src.Type != NodeTypeTreatment {
				errs = append(errs, &ValidationError{NodeID: n.ID, Reason: fmt.Sprintf("sourceNodeKey %q names a %s node, want treatment", n.SourceNodeKey, src.Type)})
			}
		case NodeTypeReview:
			if len(tpl.EdgesFrom(n.ID)) > 0 {
				errs = append(errs, &ValidationError{NodeID: n.ID, Reason: "review node must be terminal"})
			}
		}
	}

	// Cycle detection over the subgraph reachable from the start node.
	// The runtime does not break cycles, so they are rejected here.
	if tpl.StartNodeID != "" && tpl.NodeByID(tpl.StartNodeID) != nil {
		if cycle := findCycle(tpl, tpl.StartNodeID); cycle != "" {
			errs = append(errs, &ValidationError{NodeID: cycle, Reason: "cycle reachable from start node"})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// findCycle runs an iterative DFS with a recursion stack and returns the id
// of a node that closes a cycle, or "".
func findCycle(tpl *Template, startID string) string {
	const (
		white = 0 // unvisited
		grey  = 1 // on stack
		black = 2 // done
	)
	color := make(map[string]int)

	var visit func(id string) string
	visit = func(id string) string {
		color[id] = grey
		for _, e := range tpl.EdgesFrom(id) {
			if tpl.NodeByID(e.To) == nil {
				continue // dangling endpoints are reported separately
			}
			switch color[e.To] {
			case grey:
				return e.To
			case white:
				if hit := visit(e.To); hit != "" {
					return hit
				}
			}
		}
		color[id] = black
		return ""
	}

	return visit(startID)
}
