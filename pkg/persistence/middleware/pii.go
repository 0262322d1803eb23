package middleware

import (
	"context"
	"regexp"

	"github.com/massanella/fichaflow/pkg/ports"
)

type maskingMiddleware struct {
	next     ports.EntryStore
	patterns []*regexp.Regexp
}

// NewMaskingMiddleware creates a middleware that replaces the values of
// answer keys matching the patterns with "***" before the snapshot leaves
// the process. Useful when the backend is shared with parties that may see
// entry metadata but not, say, patient identifiers.
//
// Masking is lossy on purpose: loads return the masked values.
func NewMaskingMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.EntryStore) ports.EntryStore {
		return &maskingMiddleware{next: next, patterns: patterns}
	}
}

func (m *maskingMiddleware) Save(ctx context.Context, entryID string, snap ports.EntrySnapshot) error {
	// Deep-clone first so the in-memory session never observes the masking.
	masked := ports.EntrySnapshot{
		Answers:  deepCopyMap(snap.Answers),
		Computed: deepCopyMap(snap.Computed),
	}
	maskMap(masked.Answers, m.patterns)
	maskMap(masked.Computed, m.patterns)

	return m.next.Save(ctx, entryID, masked)
}

func (m *maskingMiddleware) Load(ctx context.Context, entryID string) (ports.EntrySnapshot, error) {
	return m.next.Load(ctx, entryID)
}

func (m *maskingMiddleware) Delete(ctx context.Context, entryID string) error {
	return m.next.Delete(ctx, entryID)
}

func (m *maskingMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *maskingMiddleware) Finalize(ctx context.Context, entryID string) error {
	return m.next.Finalize(ctx, entryID)
}

// Helpers

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v // shallow copy of value
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = "***"
				break
			}
		}

		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
