// Package graph renders a template as a Mermaid flowchart, for authoring
// review and documentation.
package graph

import (
	"fmt"
	"strings"

	"github.com/massanella/fichaflow/pkg/flow"
	"github.com/massanella/fichaflow/pkg/schema"
)

// Overlay contains session state to visualize on top of the static graph.
type Overlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// GenerateMermaid produces Mermaid flowchart syntax for a template.
// Semantic shapes: the start node is a circle, decision-like nodes are
// parallelograms, budget nodes are subroutines, review nodes are stadiums.
// Conditioned edges carry their equality test as the arrow label.
func GenerateMermaid(tpl *schema.Template, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for i := range tpl.Nodes {
		node := &tpl.Nodes[i]
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.ID == tpl.StartNodeID:
			opener, closer = "((", "))"
		case node.Type == schema.NodeTypeDecision || node.Type == schema.NodeTypeDiagnosis:
			opener, closer = "[/", "/]"
		case node.Type == schema.NodeTypeBudget:
			opener, closer = "[[", "]]"
		case node.Type == schema.NodeTypeReview:
			opener, closer = "([", "])"
		}

		label := node.Title
		if label == "" {
			label = node.ID
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer))
	}

	for _, e := range tpl.Edges {
		safeFrom := sanitizeMermaidID(e.From)
		safeTo := sanitizeMermaidID(e.To)

		arrow := "-->"
		if e.When != nil {
			cond := fmt.Sprintf("%s = %s", e.When.Key, flow.Coerce(e.When.Value))
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(cond))
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeFrom, arrow, safeTo))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		for _, id := range overlay.VisitedNodes {
			if id == overlay.CurrentNode {
				continue
			}
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", sanitizeMermaidID(id)))
		}
		if overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
		}
	}

	return sb.String()
}

// sanitizeMermaidID strips characters Mermaid treats as syntax.
func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(
		"/", "_",
		".", "_",
		"-", "_",
		" ", "_",
	)
	return r.Replace(id)
}

// escapeLabel keeps double quotes out of Mermaid labels.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
