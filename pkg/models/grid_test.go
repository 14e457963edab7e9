package models

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func sampleGrid() *Grid {
	g := EmptyGrid("GLOBAL.Shop")
	keys := []string{"zeta", "alpha", "count"}
	for _, k := range keys {
		g.Columns = append(g.Columns, ColumnSpec{Name: k, Data: k})
	}
	row := NewRow(keys)
	row.Set(0, "z")
	row.Set(1, nil)
	row.Set(2, int64(3))
	g.Data = append(g.Data, row)
	return g
}

func TestRowJSONKeepsColumnOrder(t *testing.T) {
	out, err := json.Marshal(sampleGrid().Data[0])
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != `{"zeta":"z","alpha":null,"count":3}` {
		t.Errorf("unexpected JSON %s", out)
	}
}

func TestRowYAMLKeepsColumnOrder(t *testing.T) {
	out, err := yaml.Marshal(sampleGrid())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(out)
	z, a, c := strings.Index(s, "zeta: z"), strings.Index(s, "alpha: null"), strings.Index(s, "count: 3")
	if z < 0 || a < 0 || c < 0 || !(z < a && a < c) {
		t.Errorf("expected row keys in column order, got:\n%s", s)
	}
}

func TestWellFormed(t *testing.T) {
	g := sampleGrid()
	if !g.WellFormed() {
		t.Error("expected sample grid to be well formed")
	}

	g.Data = append(g.Data, NewRow([]string{"zeta", "count", "alpha"}))
	if g.WellFormed() {
		t.Error("expected reordered row to be rejected")
	}

	g.Data = []Row{NewRow([]string{"zeta"})}
	if g.WellFormed() {
		t.Error("expected short row to be rejected")
	}
}

func TestRowGet(t *testing.T) {
	row := sampleGrid().Data[0]
	if v, ok := row.Get("count"); !ok || v != int64(3) {
		t.Errorf("expected 3, got %v", v)
	}
	if _, ok := row.Get("missing"); ok {
		t.Error("expected missing key to be absent")
	}
	if row.At(0) != "z" || row.Len() != 3 {
		t.Errorf("unexpected row %v", row.Keys())
	}
}

func TestEmptyGridJSON(t *testing.T) {
	out, err := json.Marshal(EmptyGrid(""))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != `{"domain":"","columns":[],"data":[]}` {
		t.Errorf("unexpected JSON %s", out)
	}
}
