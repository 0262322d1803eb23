// Package flow implements the pure navigation core: condition evaluation
// and the declaration-order edge scan that turns a template plus an answer
// map into "next node".
package flow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/massanella/fichaflow/pkg/schema"
)

// EvalCondition decides whether a conditioned edge applies for the given
// answer set. A nil condition always applies. An equality condition holds
// iff the answer key is present and its string coercion equals the
// literal's string coercion; an unanswered key can never satisfy a
// condition.
func EvalCondition(when *schema.Condition, answers map[string]any) bool {
	if when == nil {
		return true
	}
	val, ok := answers[when.Key]
	if !ok {
		return false
	}
	return Coerce(val) == Coerce(when.Value)
}

// Coerce renders a value the way the wire format's loose typing expects:
// numbers without spurious fraction digits, slices joined with commas.
func Coerce(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case []string:
		return strings.Join(t, ",")
	case []any:
		parts := make([]string, len(t))
		for i, elem := range t {
			parts[i] = Coerce(elem)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", t)
	}
}
