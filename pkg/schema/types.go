package schema

// NodeType constants define the closed set of node kinds.
const (
	// NodeTypeDecision is a single-choice question over an option list.
	NodeTypeDecision = "decision"
	// NodeTypeText is a free-text entry.
	NodeTypeText = "text"
	// NodeTypeChecklist is a multi-select item list.
	NodeTypeChecklist = "checklist"
	// NodeTypeStep is a small form: an ordered list of typed fields,
	// each contributing its own top-level answer key.
	NodeTypeStep = "step"
	// NodeTypeTreatment is a catalog picker producing selected-treatment records.
	NodeTypeTreatment = "treatment"
	// NodeTypeProcedure collects per-selected-treatment free-text annotations,
	// sourced from a prior treatment node by key reference.
	NodeTypeProcedure = "procedure"
	// NodeTypeBudget derives a totaled line-item budget from a prior
	// treatment node. "computed" is accepted as an alias on load.
	NodeTypeBudget = "budget"
	// NodeTypeComputed is the legacy alias for NodeTypeBudget.
	NodeTypeComputed = "computed"
	// NodeTypeDrawing stores an opaque encoded image blob.
	NodeTypeDrawing = "drawing"
	// NodeTypeDiagnosis is a decision variant with an optional free-text
	// "other" escape.
	NodeTypeDiagnosis = "diagnosis"
	// NodeTypeReview is the terminal read-only summary. No outgoing
	// transitions are evaluated past it.
	NodeTypeReview = "review"
)

// StepField is one typed field inside a step node. Each field owns its
// own answer key, independent of the node key.
type StepField struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"` // e.g. "text", "number", "date"
}

// BudgetConfig gates the editing affordances of a budget node.
// Discounts are always available; they do not destroy line items.
type BudgetConfig struct {
	AllowQuantityEdit bool `json:"allowQuantityEdit,omitempty" yaml:"allow_quantity_edit,omitempty"`
	AllowPriceEdit    bool `json:"allowPriceEdit,omitempty" yaml:"allow_price_edit,omitempty"`
	AllowAddItems     bool `json:"allowAddItems,omitempty" yaml:"allow_add_items,omitempty"`
	AllowRemoveItems  bool `json:"allowRemoveItems,omitempty" yaml:"allow_remove_items,omitempty"`
}

// Node represents one step of the clinical workflow graph.
//
// The kind is discriminated by Type; per-kind configuration lives in the
// optional fields. ID is graph-unique and only used for edge wiring; Key is
// the identifier under which the node's answer is stored, and must be unique
// across the whole template.
type Node struct {
	ID    string `json:"id" yaml:"id"`
	Type  string `json:"type" yaml:"type"`
	Title string `json:"title" yaml:"title"`

	// Key names the answer slot for keyed node types. Step nodes key their
	// fields individually instead.
	Key string `json:"key,omitempty" yaml:"key,omitempty"`

	// Options holds the choice list for decision, checklist and diagnosis nodes.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`

	// Fields holds the ordered form fields of a step node.
	Fields []StepField `json:"fields,omitempty" yaml:"fields,omitempty"`

	// SourceNodeKey references a prior treatment node's key. Used by
	// procedure and budget nodes.
	SourceNodeKey string `json:"sourceNodeKey,omitempty" yaml:"source_node_key,omitempty"`

	// Budget configures the editing affordances of a budget node.
	Budget *BudgetConfig `json:"budget,omitempty" yaml:"budget,omitempty"`

	// AllowOther enables the free-text escape of a diagnosis node.
	AllowOther bool `json:"allowOther,omitempty" yaml:"allow_other,omitempty"`
}

// Keyed reports whether this node kind stores its answer under Key.
// Step nodes report false: their fields carry their own keys.
func (n *Node) Keyed() bool {
	switch n.Type {
	case NodeTypeDecision, NodeTypeText, NodeTypeChecklist, NodeTypeTreatment,
		NodeTypeProcedure, NodeTypeBudget, NodeTypeDrawing, NodeTypeDiagnosis:
		return true
	}
	return false
}

// AnswerKeys returns every answer key this node contributes to the answer map.
func (n *Node) AnswerKeys() []string {
	if n.Type == NodeTypeStep {
		keys := make([]string, 0, len(n.Fields))
		for _, f := range n.Fields {
			keys = append(keys, f.Key)
		}
		return keys
	}
	if n.Keyed() && n.Key != "" {
		return []string{n.Key}
	}
	return nil
}

// Condition is a single equality test against the answer map.
// An edge with a nil condition is unconditional. No boolean composition is
// supported; divergent outcomes are expressed as multiple edges.
type Condition struct {
	Key   string
	Value any
}

// Edge is a directed, optionally-conditioned transition between two nodes.
// Evaluation order across edges sharing a From is declaration order, and is
// significant: the first matching edge wins.
type Edge struct {
	From string     `json:"from" yaml:"from"`
	To   string     `json:"to" yaml:"to"`
	When *Condition `json:"when,omitempty" yaml:"when,omitempty"`
}

// Template is the static, versioned description of a clinical workflow.
// It is immutable once loaded into a session; a new version is a new
// Template value, never an in-place mutation.
type Template struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	StartNodeID string `json:"startNodeId" yaml:"start_node_id"`
	Nodes       []Node `json:"nodes" yaml:"nodes"`
	Edges       []Edge `json:"edges" yaml:"edges"`
}

// NodeByID returns the node with the given graph id, or nil.
func (t *Template) NodeByID(id string) *Node {
	for i := range t.Nodes {
		if t.Nodes[i].ID == id {
			return &t.Nodes[i]
		}
	}
	return nil
}

// NodeByKey returns the keyed node owning the given answer key, or nil.
// Step fields are not resolved here; they do not own a node.
func (t *Template) NodeByKey(key string) *Node {
	if key == "" {
		return nil
	}
	for i := range t.Nodes {
		if t.Nodes[i].Keyed() && t.Nodes[i].Key == key {
			return &t.Nodes[i]
		}
	}
	return nil
}

// EdgesFrom returns the outgoing edges of a node in declaration order.
func (t *Template) EdgesFrom(nodeID string) []Edge {
	var out []Edge
	for _, e := range t.Edges {
		if e.From == nodeID {
			out = append(out, e)
		}
	}
	return out
}
