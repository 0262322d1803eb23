package wizard

import "github.com/massanella/fichaflow/pkg/schema"

// ReviewEntry is one answered value in the consolidated summary.
type ReviewEntry struct {
	NodeID string `json:"nodeId"`
	Title  string `json:"title"`
	Key    string `json:"key"`
	Value  any    `json:"value"`
}

// ReviewSummary is the read-only consolidation rendered by a review node.
// It is the trigger point for finalize.
type ReviewSummary struct {
	Entries  []ReviewEntry  `json:"entries"`
	Computed map[string]any `json:"computed"`
}

// Review builds the consolidated view of every answered node's value, in
// template declaration order, plus the full computed map. Unanswered keys
// are omitted; step nodes contribute one entry per answered field.
func (s *Session) Review() ReviewSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := ReviewSummary{Computed: make(map[string]any, len(s.computed))}
	for k, v := range s.computed {
		summary.Computed[k] = v
	}

	for i := range s.tpl.Nodes {
		n := &s.tpl.Nodes[i]
		if n.Type == schema.NodeTypeReview {
			continue
		}
		for _, key := range n.AnswerKeys() {
			v, ok := s.answers[key]
			if !ok {
				continue
			}
			summary.Entries = append(summary.Entries, ReviewEntry{
				NodeID: n.ID,
				Title:  n.Title,
				Key:    key,
				Value:  v,
			})
		}
	}
	return summary
}
