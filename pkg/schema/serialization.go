package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// conditionWire is the on-disk shape of a condition: {"eq": [key, literal]}.
type conditionWire struct {
	Eq []any `json:"eq" yaml:"eq"`
}

// MarshalJSON serializes the condition as {"eq": [key, value]}.
func (c Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionWire{Eq: []any{c.Key, c.Value}})
}

// UnmarshalJSON deserializes {"eq": [key, value]}.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw conditionWire
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return c.fromWire(raw)
}

// MarshalYAML serializes the condition as {eq: [key, value]}.
func (c Condition) MarshalYAML() (any, error) {
	return conditionWire{Eq: []any{c.Key, c.Value}}, nil
}

// UnmarshalYAML deserializes {eq: [key, value]}.
func (c *Condition) UnmarshalYAML(value *yaml.Node) error {
	var raw conditionWire
	if err := value.Decode(&raw); err != nil {
		return err
	}
	return c.fromWire(raw)
}

func (c *Condition) fromWire(raw conditionWire) error {
	if len(raw.Eq) != 2 {
		return fmt.Errorf("condition: eq expects [key, value], got %d elements", len(raw.Eq))
	}
	key, ok := raw.Eq[0].(string)
	if !ok {
		return fmt.Errorf("condition: eq key must be a string, got %T", raw.Eq[0])
	}
	c.Key = key
	c.Value = raw.Eq[1]
	return nil
}

// ParseJSON decodes a template from its JSON wire form and normalizes
// legacy node type aliases.
func ParseJSON(data []byte) (*Template, error) {
	var tpl Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	normalize(&tpl)
	return &tpl, nil
}

// ParseYAML decodes a template from YAML.
func ParseYAML(data []byte) (*Template, error) {
	var tpl Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	normalize(&tpl)
	return &tpl, nil
}

// normalize rewrites the legacy "computed" discriminant to "budget".
func normalize(tpl *Template) {
	for i := range tpl.Nodes {
		if tpl.Nodes[i].Type == NodeTypeComputed {
			tpl.Nodes[i].Type = NodeTypeBudget
		}
	}
}
