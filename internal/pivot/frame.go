// Package pivot reshapes long-format store records into wide frames.
//
// A Frame is an ordered column list plus rows keyed by column name. All
// report shapes are built by one Pivot call followed by frame edits
// (defaults, derived columns, joins, renames) before serialization.
package pivot

import "sort"

// Frame is an in-memory wide table. Rows may temporarily lack columns
// during editing; Reindex and Fill restore the full column set.
type Frame struct {
	Columns []string
	Rows    []map[string]any
}

// NewFrame creates an empty frame with the given columns.
func NewFrame(columns ...string) *Frame {
	return &Frame{Columns: append([]string(nil), columns...)}
}

// Has reports whether col is a declared column.
func (f *Frame) Has(col string) bool {
	return f.index(col) >= 0
}

func (f *Frame) index(col string) int {
	for i, c := range f.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Append adds a row. Keys not in Columns are ignored by serialization.
func (f *Frame) Append(row map[string]any) {
	f.Rows = append(f.Rows, row)
}

// Insert declares col at position pos with value for every row, unless col
// already exists, in which case the frame is left untouched. pos is clamped
// to the column range.
func (f *Frame) Insert(pos int, col string, value any) bool {
	if f.Has(col) {
		return false
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(f.Columns) {
		pos = len(f.Columns)
	}
	f.Columns = append(f.Columns, "")
	copy(f.Columns[pos+1:], f.Columns[pos:])
	f.Columns[pos] = col
	for _, row := range f.Rows {
		row[col] = value
	}
	return true
}

// Apply sets col on every row to fn(row), declaring col at the end when it
// does not exist yet.
func (f *Frame) Apply(col string, fn func(row map[string]any) any) {
	if !f.Has(col) {
		f.Columns = append(f.Columns, col)
	}
	for _, row := range f.Rows {
		row[col] = fn(row)
	}
}

// Drop removes columns from the frame and its rows.
func (f *Frame) Drop(cols ...string) {
	for _, col := range cols {
		i := f.index(col)
		if i < 0 {
			continue
		}
		f.Columns = append(f.Columns[:i], f.Columns[i+1:]...)
		for _, row := range f.Rows {
			delete(row, col)
		}
	}
}

// Rename renames columns according to names (old -> new).
func (f *Frame) Rename(names map[string]string) {
	for i, col := range f.Columns {
		to, ok := names[col]
		if !ok {
			continue
		}
		f.Columns[i] = to
		for _, row := range f.Rows {
			if v, ok := row[col]; ok {
				delete(row, col)
				row[to] = v
			}
		}
	}
}

// Reindex makes the column list exactly cols. Rows gain nil for columns
// they lack and lose values for columns not listed.
func (f *Frame) Reindex(cols []string) {
	keep := make(map[string]bool, len(cols))
	for _, c := range cols {
		keep[c] = true
	}
	for _, row := range f.Rows {
		for k := range row {
			if !keep[k] {
				delete(row, k)
			}
		}
		for _, c := range cols {
			if _, ok := row[c]; !ok {
				row[c] = nil
			}
		}
	}
	f.Columns = append([]string(nil), cols...)
}

// Fill replaces nil and absent cells of declared columns with value.
func (f *Frame) Fill(value any) {
	for _, row := range f.Rows {
		for _, c := range f.Columns {
			if v, ok := row[c]; !ok || v == nil {
				row[c] = value
			}
		}
	}
}

// Filter keeps the rows for which keep returns true.
func (f *Frame) Filter(keep func(row map[string]any) bool) {
	out := f.Rows[:0]
	for _, row := range f.Rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	f.Rows = out
}

// SortRows stably sorts rows with less.
func (f *Frame) SortRows(less func(a, b map[string]any) bool) {
	sort.SliceStable(f.Rows, func(i, j int) bool {
		return less(f.Rows[i], f.Rows[j])
	})
}

// LeftJoin attaches the columns of right to f, matching rows on the column
// on. Right columns other than on are appended in right's order; rows with
// no match receive nil. When right holds several rows for one key the first
// one wins.
func (f *Frame) LeftJoin(right *Frame, on string) {
	index := make(map[any]map[string]any, len(right.Rows))
	for _, row := range right.Rows {
		k := row[on]
		if _, dup := index[k]; !dup {
			index[k] = row
		}
	}

	var added []string
	for _, c := range right.Columns {
		if c != on && !f.Has(c) {
			added = append(added, c)
		}
	}
	f.Columns = append(f.Columns, added...)

	for _, row := range f.Rows {
		match := index[row[on]]
		for _, c := range added {
			if match == nil {
				row[c] = nil
				continue
			}
			row[c] = match[c]
		}
	}
}
