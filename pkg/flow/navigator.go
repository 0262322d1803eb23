package flow

import "github.com/massanella/fichaflow/pkg/schema"

// NextNode computes the node following currentID for the given answer set.
//
// It scans the template's edges in declaration order, keeping only those
// leaving currentID, and returns the target of the first edge whose
// condition holds. Declaration order is the only tie-break: an earlier
// unconditional edge always wins over later conditioned ones, which is an
// authoring-time concern, not a runtime one.
//
// The second return is false when no edge matches; the current node is then
// terminal for this answer set. Pure function: identical inputs always
// produce the identical result.
func NextNode(tpl *schema.Template, currentID string, answers map[string]any) (string, bool) {
	for _, e := range tpl.Edges {
		if e.From != currentID {
			continue
		}
		if EvalCondition(e.When, answers) {
			return e.To, true
		}
	}
	return "", false
}
