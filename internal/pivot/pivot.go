package pivot

import (
	"fmt"
	"strings"
	"time"

	"github.com/fidde/scorecard/pkg/models"
)

// Aggregation decides how several records landing in one cell combine.
type Aggregation int

const (
	// First keeps the first non-nil value seen for a cell.
	First Aggregation = iota
	// Last keeps the last non-nil value seen for a cell.
	Last
	// Count counts the records landing in a cell; Spec.Value is ignored.
	Count
)

// Spec parametrizes the long-to-wide pivot.
type Spec struct {
	// RowKey lists the record fields that form a row's identity. They
	// become the leading frame columns, in this order.
	RowKey []string
	// Dimension is the record field whose distinct values become columns.
	Dimension string
	// Value is the record field placed into cells.
	Value string
	Agg   Aggregation
	// Missing is the cell value for row/dimension pairs with no record.
	Missing any
	// Order orders the observed dimension values. Nil sorts by name.
	Order OrderFunc
	// Label turns a dimension value into a column name. Nil keeps the
	// value as is.
	Label func(dim string) string
}

// Pivot groups records by Spec.RowKey and spreads Spec.Dimension across
// columns. Every dimension value observed anywhere in records becomes a
// column of every row. Rows keep the order in which their key first
// appears. A record lacking a row-key or dimension field, or a dimension
// value whose label names a row-key field, is a *models.ShapeMismatchError.
func Pivot(records []models.Record, spec Spec) (*Frame, error) {
	if spec.Dimension == "" {
		return nil, fmt.Errorf("pivot: dimension field is required")
	}
	if spec.Agg != Count && spec.Value == "" {
		return nil, fmt.Errorf("pivot: value field is required")
	}

	type group struct {
		key   []any
		cells map[string]any
		seen  map[string]bool
	}

	var (
		order    []string
		groups   = make(map[string]*group)
		observed []string
		dimRow   = make(map[string]int)
	)

	for i, rec := range records {
		key := make([]any, len(spec.RowKey))
		for j, field := range spec.RowKey {
			v, ok := rec[field]
			if !ok || v == nil {
				return nil, &models.ShapeMismatchError{Field: field, Row: i, Reason: "row key field missing"}
			}
			key[j] = Normalize(v)
		}
		dim, ok := rec.String(spec.Dimension)
		if !ok {
			return nil, &models.ShapeMismatchError{Field: spec.Dimension, Row: i, Reason: "dimension field missing"}
		}
		if spec.Agg != Count {
			if _, ok := rec[spec.Value]; !ok {
				return nil, &models.ShapeMismatchError{Field: spec.Value, Row: i, Reason: "value field missing"}
			}
		}

		if _, ok := dimRow[dim]; !ok {
			dimRow[dim] = i
			observed = append(observed, dim)
		}

		id := groupID(key)
		g, ok := groups[id]
		if !ok {
			g = &group{key: key, cells: make(map[string]any), seen: make(map[string]bool)}
			groups[id] = g
			order = append(order, id)
		}

		switch spec.Agg {
		case Count:
			n, _ := g.cells[dim].(int64)
			g.cells[dim] = n + 1
			g.seen[dim] = true
		case Last:
			if v := Normalize(rec[spec.Value]); v != nil {
				g.cells[dim] = v
				g.seen[dim] = true
			}
		default:
			if v := Normalize(rec[spec.Value]); v != nil && !g.seen[dim] {
				g.cells[dim] = v
				g.seen[dim] = true
			}
		}
	}

	orderFn := spec.Order
	if orderFn == nil {
		orderFn = Ascending
	}
	dims := orderFn(observed)

	// Distinct dimension values may flatten to the same label; they then
	// share one column and the first dimension in order wins the cell.
	keyField := make(map[string]bool, len(spec.RowKey))
	for _, field := range spec.RowKey {
		keyField[field] = true
	}
	labels := make([]string, 0, len(dims))
	labelDims := make(map[string][]string, len(dims))
	for _, dim := range dims {
		label := dim
		if spec.Label != nil {
			label = spec.Label(dim)
		}
		if keyField[label] {
			return nil, &models.ShapeMismatchError{
				Field:  spec.Dimension,
				Row:    dimRow[dim],
				Reason: fmt.Sprintf("dimension value %q collides with row key column %q", dim, label),
			}
		}
		if _, ok := labelDims[label]; !ok {
			labels = append(labels, label)
		}
		labelDims[label] = append(labelDims[label], dim)
	}

	frame := NewFrame(spec.RowKey...)
	frame.Columns = append(frame.Columns, labels...)

	for _, id := range order {
		g := groups[id]
		row := make(map[string]any, len(frame.Columns))
		for j, field := range spec.RowKey {
			row[field] = g.key[j]
		}
		for _, label := range labels {
			row[label] = spec.Missing
			for _, dim := range labelDims[label] {
				if g.seen[dim] {
					row[label] = g.cells[dim]
					break
				}
			}
		}
		frame.Append(row)
	}
	return frame, nil
}

// Normalize maps driver values onto the grid value set: strings, int64,
// float64, bool, time and nil.
func Normalize(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	case float32:
		return float64(t)
	case time.Time:
		return t
	default:
		return v
	}
}

func groupID(key []any) string {
	parts := make([]string, len(key))
	for i, k := range key {
		parts[i] = fmt.Sprintf("%T:%v", k, k)
	}
	return strings.Join(parts, "\x1f")
}
