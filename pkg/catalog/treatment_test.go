package catalog

import "testing"

func TestSelectDefaultsQuantity(t *testing.T) {
	tr := Treatment{ID: "t1", Nombre: "Limpieza", Precio: 30}

	sel := Select(tr, 0)
	if sel.Cantidad != 1 {
		t.Errorf("expected quantity clamp to 1, got %d", sel.Cantidad)
	}
	if sel.TratamientoID != "t1" || sel.Nombre != "Limpieza" || sel.Precio != 30 {
		t.Errorf("selection fields not copied: %+v", sel)
	}

	if sel := Select(tr, 3); sel.Cantidad != 3 {
		t.Errorf("expected quantity 3, got %d", sel.Cantidad)
	}
}

func TestDecodeSelections(t *testing.T) {
	// JSON persistence turns selections into []any of generic maps.
	raw := []any{
		map[string]any{"tratamientoId": "t1", "nombre": "Limpieza", "cantidad": float64(2), "precio": float64(30)},
		map[string]any{"tratamientoId": "t2", "nombre": "Empaste", "cantidad": float64(1), "precio": float64(45)},
	}

	sels, err := DecodeSelections(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(sels) != 2 {
		t.Fatalf("expected 2 selections, got %d", len(sels))
	}
	if sels[0].TratamientoID != "t1" || sels[0].Cantidad != 2 {
		t.Errorf("first selection mismatch: %+v", sels[0])
	}
}

func TestDecodeSelectionsNil(t *testing.T) {
	sels, err := DecodeSelections(nil)
	if err != nil {
		t.Fatalf("nil input should not error: %v", err)
	}
	if len(sels) != 0 {
		t.Errorf("expected empty slice, got %v", sels)
	}
}

func TestDecodeSelectionsPassthrough(t *testing.T) {
	in := []Selection{{TratamientoID: "t1", Nombre: "Limpieza", Cantidad: 1, Precio: 30}}
	out, err := DecodeSelections(in)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(out) != 1 || out[0].TratamientoID != "t1" {
		t.Errorf("typed slice should pass through: %+v", out)
	}
}
