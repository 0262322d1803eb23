package schema

import (
	"encoding/json"
	"testing"
)

const sampleJSON = `{
	"id": "endodoncia",
	"name": "Ficha de endodoncia",
	"startNodeId": "motivo",
	"nodes": [
		{"id": "motivo", "type": "decision", "title": "Motivo", "key": "motivo", "options": ["control", "urgencia"]},
		{"id": "tratamientos", "type": "treatment", "title": "Tratamientos", "key": "tratamientos"},
		{"id": "presupuesto", "type": "computed", "title": "Presupuesto", "key": "presupuesto", "sourceNodeKey": "tratamientos"},
		{"id": "resumen", "type": "review", "title": "Resumen"}
	],
	"edges": [
		{"from": "motivo", "to": "tratamientos", "when": {"eq": ["motivo", "urgencia"]}},
		{"from": "motivo", "to": "resumen"},
		{"from": "tratamientos", "to": "presupuesto"},
		{"from": "presupuesto", "to": "resumen"}
	]
}`

func TestParseJSON(t *testing.T) {
	tpl, err := ParseJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if tpl.ID != "endodoncia" || tpl.StartNodeID != "motivo" {
		t.Fatalf("header mismatch: %+v", tpl)
	}
	if len(tpl.Nodes) != 4 || len(tpl.Edges) != 4 {
		t.Fatalf("expected 4 nodes and 4 edges, got %d/%d", len(tpl.Nodes), len(tpl.Edges))
	}

	cond := tpl.Edges[0].When
	if cond == nil || cond.Key != "motivo" || cond.Value != "urgencia" {
		t.Errorf("condition not decoded: %+v", cond)
	}
	if tpl.Edges[1].When != nil {
		t.Errorf("unconditional edge gained a condition: %+v", tpl.Edges[1].When)
	}
}

func TestParseJSONNormalizesComputedAlias(t *testing.T) {
	tpl, err := ParseJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	node := tpl.NodeByID("presupuesto")
	if node == nil {
		t.Fatal("presupuesto node missing")
	}
	if node.Type != NodeTypeBudget {
		t.Errorf("legacy alias not normalized: got %q", node.Type)
	}
}

func TestParseYAML(t *testing.T) {
	doc := `
id: perio
name: Ficha periodontal
start_node_id: inicio
nodes:
  - id: inicio
    type: decision
    title: Tipo de visita
    key: tipoVisita
    options: [primera, seguimiento]
  - id: notas
    type: text
    title: Notas
    key: notas
edges:
  - from: inicio
    to: notas
    when:
      eq: [tipoVisita, seguimiento]
  - from: inicio
    to: notas
`
	tpl, err := ParseYAML([]byte(doc))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if tpl.ID != "perio" || tpl.StartNodeID != "inicio" {
		t.Fatalf("header mismatch: %+v", tpl)
	}
	cond := tpl.Edges[0].When
	if cond == nil || cond.Key != "tipoVisita" || cond.Value != "seguimiento" {
		t.Errorf("yaml condition not decoded: %+v", cond)
	}
}

func TestConditionRoundtrip(t *testing.T) {
	in := Condition{Key: "motivo", Value: "urgencia"}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"eq":["motivo","urgencia"]}` {
		t.Fatalf("unexpected wire form: %s", data)
	}

	var out Condition
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out.Key != in.Key || out.Value != in.Value {
		t.Errorf("roundtrip mismatch: %+v", out)
	}
}

func TestConditionRejectsMalformedWire(t *testing.T) {
	var c Condition
	if err := json.Unmarshal([]byte(`{"eq":["soloUnElemento"]}`), &c); err == nil {
		t.Error("expected error for one-element eq")
	}
	if err := json.Unmarshal([]byte(`{"eq":[42, "valor"]}`), &c); err == nil {
		t.Error("expected error for non-string key")
	}
}
