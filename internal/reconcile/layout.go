package reconcile

import "github.com/fidde/scorecard/internal/pivot"

// Layout is a presentation rule: the exact column set and order, followed
// by renames applied after reordering.
type Layout struct {
	Columns []string
	Rename  map[string]string
}

// Apply reindexes f to exactly Columns, dropping any other column, then
// renames.
func (l Layout) Apply(f *pivot.Frame) {
	f.Reindex(l.Columns)
	f.Rename(l.Rename)
}
