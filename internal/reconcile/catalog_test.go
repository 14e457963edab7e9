package reconcile

import (
	"reflect"
	"testing"

	"github.com/fidde/scorecard/internal/pivot"
)

func TestApplyInsertsDefaults(t *testing.T) {
	f := pivot.NewFrame("appid", "license", "Git_Lines_Added")
	f.Append(map[string]any{"appid": int64(1), "license": "Y", "Git_Lines_Added": "42"})
	f.Append(map[string]any{"appid": int64(2), "license": nil, "Git_Lines_Added": "n/a"})

	Scorecard.Apply(f)

	for _, key := range Scorecard.Keys() {
		if !f.Has(key) {
			t.Errorf("expected column %s to be present", key)
		}
	}

	tests := []struct {
		row  int
		key  string
		want any
	}{
		{0, "license", "Y"},
		{1, "license", "N"},
		{0, "readme", "N"},
		{0, "Git_Lines_Added", int64(42)},
		{1, "Git_Lines_Added", int64(0)},
		{0, "Git_Lines_Total", int64(0)},
		{1, "Sonar_Bugs", ""},
	}
	for _, tt := range tests {
		if got := f.Rows[tt.row][tt.key]; got != tt.want {
			t.Errorf("row %d %s: expected %#v, got %#v", tt.row, tt.key, tt.want, got)
		}
	}
}

func TestApplyIdempotent(t *testing.T) {
	build := func() *pivot.Frame {
		f := pivot.NewFrame("appid", "swagger", "Git_Committers_Cnt")
		f.Append(map[string]any{"appid": int64(1), "swagger": "Y", "Git_Committers_Cnt": "3.9"})
		return f
	}

	once := build()
	Scorecard.Apply(once)

	twice := build()
	Scorecard.Apply(twice)
	Scorecard.Apply(twice)

	if !reflect.DeepEqual(once.Columns, twice.Columns) {
		t.Errorf("columns differ: %v vs %v", once.Columns, twice.Columns)
	}
	if !reflect.DeepEqual(once.Rows, twice.Rows) {
		t.Errorf("rows differ: %v vs %v", once.Rows, twice.Rows)
	}
	if once.Rows[0]["Git_Committers_Cnt"] != int64(3) {
		t.Errorf("expected truncation to 3, got %#v", once.Rows[0]["Git_Committers_Cnt"])
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		in   any
		want int64
	}{
		{int64(7), 7},
		{int32(7), 7},
		{7.9, 7},
		{"12", 12},
		{" 12 ", 12},
		{"12.5", 12},
		{[]byte("5"), 5},
		{"abc", 0},
		{"", 0},
		{nil, 0},
		{true, 1},
	}
	for _, tt := range tests {
		if got := ToInt(tt.in); got != tt.want {
			t.Errorf("ToInt(%#v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLayoutApply(t *testing.T) {
	f := pivot.NewFrame("b", "extra", "a")
	f.Append(map[string]any{"a": 1, "b": 2, "extra": 3})

	Layout{
		Columns: []string{"a", "b", "c"},
		Rename:  map[string]string{"b": "bee"},
	}.Apply(f)

	want := []string{"a", "bee", "c"}
	if !reflect.DeepEqual(f.Columns, want) {
		t.Fatalf("expected %v, got %v", want, f.Columns)
	}
	if f.Rows[0]["bee"] != 2 {
		t.Errorf("expected renamed value, got %v", f.Rows[0])
	}
	if _, ok := f.Rows[0]["extra"]; ok {
		t.Error("expected unlisted column to be dropped")
	}
	if v, ok := f.Rows[0]["c"]; !ok || v != nil {
		t.Errorf("expected nil for new column, got %v", v)
	}
}
