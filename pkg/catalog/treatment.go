// Package catalog defines the read-only treatment catalog consumed by
// treatment nodes. The engine treats the catalog as injected data; it never
// fetches or caches it itself.
package catalog

import "github.com/mitchellh/mapstructure"

// Treatment is one catalog record.
type Treatment struct {
	ID            string  `json:"id" mapstructure:"id"`
	Nombre        string  `json:"nombre" mapstructure:"nombre"`
	Precio        float64 `json:"precio" mapstructure:"precio"`
	Descripcion   string  `json:"descripcion,omitempty" mapstructure:"descripcion"`
	Indicaciones  string  `json:"indicaciones,omitempty" mapstructure:"indicaciones"`
	Procedimiento string  `json:"procedimiento,omitempty" mapstructure:"procedimiento"`
}

// Selection is one picked treatment inside a treatment node's answer.
type Selection struct {
	TratamientoID string  `json:"tratamientoId" mapstructure:"tratamientoId"`
	Nombre        string  `json:"nombre" mapstructure:"nombre"`
	Cantidad      int     `json:"cantidad" mapstructure:"cantidad"`
	Precio        float64 `json:"precio" mapstructure:"precio"`
}

// Select builds a selection from a catalog record. Quantity defaults to 1.
func Select(t Treatment, cantidad int) Selection {
	if cantidad < 1 {
		cantidad = 1
	}
	return Selection{
		TratamientoID: t.ID,
		Nombre:        t.Nombre,
		Cantidad:      cantidad,
		Precio:        t.Precio,
	}
}

// DecodeSelections converts a treatment node's raw answer value into typed
// selections. Answers round-trip through JSON persistence, so the value may
// arrive as []Selection, []any of map[string]any, or nil (node not answered
// yet, which yields an empty slice, not an error).
func DecodeSelections(v any) ([]Selection, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []Selection:
		return t, nil
	}
	var out []Selection
	if err := mapstructure.Decode(v, &out); err != nil {
		return nil, err
	}
	return out, nil
}
