// Package budget implements the computed line-item budget derived from a
// treatment node's selections, together with its flag-gated editing
// operations.
//
// Invariants held by every operation: item.Total == Cantidad*PrecioUnitario
// for all items, Subtotal == sum of item totals, and Total ==
// max(0, Subtotal-Descuentos). All arithmetic is performed in one currency
// unit; formatting is an external concern.
package budget

import (
	"errors"

	"github.com/mitchellh/mapstructure"

	"github.com/massanella/fichaflow/pkg/catalog"
	"github.com/massanella/fichaflow/pkg/schema"
)

var (
	// ErrEditNotAllowed is returned when a node's configuration disables
	// the attempted operation.
	ErrEditNotAllowed = errors.New("budget: edit not allowed by node configuration")
	// ErrProtectedItem is returned when the target item is provenance-linked
	// to a treatment selection and cannot be renamed or removed.
	ErrProtectedItem = errors.New("budget: item is linked to a treatment and cannot be modified")
	// ErrItemOutOfRange is returned for an invalid item index.
	ErrItemOutOfRange = errors.New("budget: item index out of range")
)

// Item is one budget line. Items carrying a TratamientoID are
// provenance-linked to a treatment selection: their identity and description
// stay fixed. Items without one are free-form additions.
type Item struct {
	Descripcion    string  `json:"descripcion" mapstructure:"descripcion"`
	Cantidad       int     `json:"cantidad" mapstructure:"cantidad"`
	PrecioUnitario float64 `json:"precioUnitario" mapstructure:"precioUnitario"`
	Total          float64 `json:"total" mapstructure:"total"`
	TratamientoID  string  `json:"tratamientoId,omitempty" mapstructure:"tratamientoId"`
}

// Data is the totaled budget. The two discount inputs are kept alongside
// the derived Descuentos so recomputation is stable across edits and
// persistence round-trips.
type Data struct {
	Items []Item `json:"items" mapstructure:"items"`

	// DescuentoPorcentaje is a whole-number percentage 0-100 applied to the
	// subtotal. DescuentoImporte is an independent fixed amount. Both sum
	// into Descuentos.
	DescuentoPorcentaje int     `json:"descuentoPorcentaje" mapstructure:"descuentoPorcentaje"`
	DescuentoImporte    float64 `json:"descuentoImporte" mapstructure:"descuentoImporte"`

	Subtotal   float64 `json:"subtotal" mapstructure:"subtotal"`
	Descuentos float64 `json:"descuentos" mapstructure:"descuentos"`
	Total      float64 `json:"total" mapstructure:"total"`
}

// Derive builds the initial budget from a treatment node's selections: one
// provenance-linked item per selection. An empty or nil selection list (the
// source node not answered yet) yields an empty, still-editable budget.
func Derive(selections []catalog.Selection) *Data {
	d := &Data{Items: make([]Item, 0, len(selections))}
	for _, sel := range selections {
		cantidad := sel.Cantidad
		if cantidad < 1 {
			cantidad = 1
		}
		d.Items = append(d.Items, Item{
			Descripcion:    sel.Nombre,
			Cantidad:       cantidad,
			PrecioUnitario: sel.Precio,
			TratamientoID:  sel.TratamientoID,
		})
	}
	d.recalc()
	return d
}

// Decode converts a persisted budget answer back into typed Data. Answers
// round-trip through JSON, so the value may arrive as *Data, Data, or a
// generic map. Nil input yields nil without error.
func Decode(v any) (*Data, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case *Data:
		return t, nil
	case Data:
		return &t, nil
	}
	var out Data
	cfg := &mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(v); err != nil {
		return nil, err
	}
	return &out, nil
}

// recalc restores the arithmetic invariants after any mutation.
func (d *Data) recalc() {
	subtotal := 0.0
	for i := range d.Items {
		d.Items[i].Total = float64(d.Items[i].Cantidad) * d.Items[i].PrecioUnitario
		subtotal += d.Items[i].Total
	}
	d.Subtotal = subtotal

	pct := d.DescuentoPorcentaje
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	d.DescuentoPorcentaje = pct

	if d.DescuentoImporte < 0 {
		d.DescuentoImporte = 0
	}

	d.Descuentos = subtotal*float64(pct)/100 + d.DescuentoImporte
	d.Total = subtotal - d.Descuentos
	if d.Total < 0 {
		d.Total = 0
	}
}

// SetQuantity updates an item's quantity, clamped to a minimum of 1.
func (d *Data) SetQuantity(cfg *schema.BudgetConfig, index, cantidad int) error {
	if cfg == nil || !cfg.AllowQuantityEdit {
		return ErrEditNotAllowed
	}
	if index < 0 || index >= len(d.Items) {
		return ErrItemOutOfRange
	}
	if cantidad < 1 {
		cantidad = 1
	}
	d.Items[index].Cantidad = cantidad
	d.recalc()
	return nil
}

// SetUnitPrice updates an item's unit price, clamped to a minimum of 0.
func (d *Data) SetUnitPrice(cfg *schema.BudgetConfig, index int, precio float64) error {
	if cfg == nil || !cfg.AllowPriceEdit {
		return ErrEditNotAllowed
	}
	if index < 0 || index >= len(d.Items) {
		return ErrItemOutOfRange
	}
	if precio < 0 {
		precio = 0
	}
	d.Items[index].PrecioUnitario = precio
	d.recalc()
	return nil
}

// SetDescription renames a free-form item. Provenance-linked items keep
// their source name fixed.
func (d *Data) SetDescription(index int, descripcion string) error {
	if index < 0 || index >= len(d.Items) {
		return ErrItemOutOfRange
	}
	if d.Items[index].TratamientoID != "" {
		return ErrProtectedItem
	}
	d.Items[index].Descripcion = descripcion
	return nil
}

// AddItem appends a zero-valued free item with no treatment link.
func (d *Data) AddItem(cfg *schema.BudgetConfig, descripcion string) error {
	if cfg == nil || !cfg.AllowAddItems {
		return ErrEditNotAllowed
	}
	d.Items = append(d.Items, Item{
		Descripcion: descripcion,
		Cantidad:    1,
	})
	d.recalc()
	return nil
}

// RemoveItem deletes a free-form item. Provenance-linked items cannot be
// removed.
func (d *Data) RemoveItem(cfg *schema.BudgetConfig, index int) error {
	if cfg == nil || !cfg.AllowRemoveItems {
		return ErrEditNotAllowed
	}
	if index < 0 || index >= len(d.Items) {
		return ErrItemOutOfRange
	}
	if d.Items[index].TratamientoID != "" {
		return ErrProtectedItem
	}
	d.Items = append(d.Items[:index], d.Items[index+1:]...)
	d.recalc()
	return nil
}

// SetDiscountPercent sets the percentage discount (whole number 0-100).
func (d *Data) SetDiscountPercent(pct int) {
	d.DescuentoPorcentaje = pct
	d.recalc()
}

// SetDiscountAmount sets the independent fixed discount.
func (d *Data) SetDiscountAmount(importe float64) {
	d.DescuentoImporte = importe
	d.recalc()
}

// Clone returns a deep copy.
func (d *Data) Clone() *Data {
	if d == nil {
		return nil
	}
	out := *d
	out.Items = make([]Item, len(d.Items))
	copy(out.Items, d.Items)
	return &out
}
