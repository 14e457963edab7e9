package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fidde/scorecard/internal/pivot"
	"github.com/fidde/scorecard/pkg/models"
)

// Serialize emits f as a grid, skipping the first skip columns. Column
// keys are lower-cased and every row carries exactly the declared keys in
// declared order. Two columns whose keys collide once lower-cased are a
// *models.ShapeMismatchError.
func Serialize(domain string, f *pivot.Frame, skip int) (*models.Grid, error) {
	grid := models.EmptyGrid(domain)
	if skip > len(f.Columns) {
		skip = len(f.Columns)
	}
	cols := f.Columns[skip:]

	keys := make([]string, len(cols))
	owner := make(map[string]string, len(cols))
	for i, col := range cols {
		keys[i] = strings.ToLower(col)
		if prev, dup := owner[keys[i]]; dup {
			return nil, &models.ShapeMismatchError{
				Field:  col,
				Row:    -1,
				Reason: fmt.Sprintf("column key %q collides with column %q", keys[i], prev),
			}
		}
		owner[keys[i]] = col
		grid.Columns = append(grid.Columns, models.ColumnSpec{Name: keys[i], Data: keys[i]})
	}

	for _, src := range f.Rows {
		row := models.NewRow(keys)
		for i, col := range cols {
			row.Set(i, gridValue(src[col]))
		}
		grid.Data = append(grid.Data, row)
	}
	return grid, nil
}

// gridValue narrows a frame cell to string, int64, float64 or nil.
func gridValue(v any) any {
	switch t := pivot.Normalize(v).(type) {
	case nil:
		return nil
	case string, int64:
		return t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0.0
		}
		return t
	case bool:
		if t {
			return "Y"
		}
		return "N"
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
