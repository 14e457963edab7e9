// Package reconcile guarantees a complete, stable column set for report
// frames regardless of which facts the store returned.
package reconcile

import (
	"math"
	"strconv"
	"strings"

	"github.com/fidde/scorecard/internal/pivot"
)

// Kind is the value kind of a catalog column. It decides the default.
type Kind int

const (
	// Flag columns hold Y/N presence markers and default to "N".
	Flag Kind = iota
	// Counter columns hold integer counts and default to 0.
	Counter
	// Text columns hold free text or scores and default to "".
	Text
)

// Column is one expected column.
type Column struct {
	Key  string
	Kind Kind
}

// Default returns the type-appropriate default value for the column.
func (c Column) Default() any {
	switch c.Kind {
	case Flag:
		return "N"
	case Counter:
		return int64(0)
	default:
		return ""
	}
}

// Catalog is an ordered list of expected columns.
type Catalog []Column

// Scorecard lists the metric columns every scorecard matrix row carries
// before derived metrics are computed. Keys are flattened fact names.
var Scorecard = Catalog{
	{Key: "license", Kind: Flag},
	{Key: "readme", Kind: Flag},
	{Key: "swagger", Kind: Flag},
	{Key: "Git_Committers_Cnt", Kind: Counter},
	{Key: "Git_Total_Committers_Cnt", Kind: Counter},
	{Key: "Git_Lines_Added", Kind: Counter},
	{Key: "Git_Lines_Deleted", Kind: Counter},
	{Key: "Git_Lines_Total", Kind: Counter},
	{Key: "Job_Triggered_By", Kind: Text},
	{Key: "Sonar_Bugs", Kind: Text},
	{Key: "Sonar_Code_Smells", Kind: Text},
	{Key: "Sonar_Violations", Kind: Text},
	{Key: "Sonar_Project_Status", Kind: Text},
	{Key: "Veracode_Score", Kind: Text},
}

// Apply declares every missing catalog column with its default, fills
// empty cells of catalog columns with the default and coerces Counter
// cells to int64 (unparseable values become 0). Applying it twice yields
// the same frame as applying it once.
func (c Catalog) Apply(f *pivot.Frame) {
	for _, col := range c {
		f.Insert(len(f.Columns), col.Key, col.Default())
		for _, row := range f.Rows {
			v, ok := row[col.Key]
			if !ok || v == nil {
				row[col.Key] = col.Default()
				continue
			}
			if col.Kind == Counter {
				row[col.Key] = ToInt(v)
			}
		}
	}
}

// Keys returns the catalog keys in order.
func (c Catalog) Keys() []string {
	keys := make([]string, len(c))
	for i, col := range c {
		keys[i] = col.Key
	}
	return keys
}

// ToInt coerces a cell to int64. Numeric text is parsed, fractional values
// truncate toward zero and anything else becomes 0.
func ToInt(v any) int64 {
	switch t := pivot.Normalize(v).(type) {
	case int64:
		return t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return int64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(f)
		}
		return 0
	default:
		return 0
	}
}
