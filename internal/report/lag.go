package report

import (
	"sort"
	"time"

	"github.com/fidde/scorecard/internal/derive"
	"github.com/fidde/scorecard/internal/pivot"
	"github.com/fidde/scorecard/pkg/models"
)

// lagPrefix is the pivot value label stripped from lag column keys.
const lagPrefix = "diff"

type deployment struct {
	id    int64
	start time.Time
}

// BuildLag pivots deployment facts into one row per application and one
// column per environment. A cell holds the time between the two most
// recent deployments (by deployment id) of that application to that
// environment; a single deployment counts as zero. Rows without any
// non-zero lag are dropped.
func BuildLag(records []models.Record, envOrder []string, mode models.LagMode) (*pivot.Frame, error) {
	type pair struct{ app, env string }

	var keys []pair
	groups := make(map[pair][]deployment)
	for i, rec := range records {
		app, ok := rec.String("application")
		if !ok {
			return nil, &models.ShapeMismatchError{Field: "application", Row: i, Reason: "row key field missing"}
		}
		env, ok := rec.String("environment")
		if !ok {
			return nil, &models.ShapeMismatchError{Field: "environment", Row: i, Reason: "dimension field missing"}
		}
		id, ok := rec.Int("deploymentid")
		if !ok {
			return nil, &models.ShapeMismatchError{Field: "deploymentid", Row: i, Reason: "deployment id missing"}
		}
		start, ok := rec.Time("startts")
		if !ok {
			return nil, &models.ShapeMismatchError{Field: "startts", Row: i, Reason: "start timestamp missing or unparseable"}
		}

		k := pair{app, env}
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], deployment{id: id, start: start})
	}

	facts := make([]models.Record, 0, len(keys))
	for _, k := range keys {
		facts = append(facts, models.Record{
			"application": k.app,
			"environment": k.env,
			"elapsed":     latestGap(groups[k]),
		})
	}

	frame, err := pivot.Pivot(facts, pivot.Spec{
		RowKey:    []string{"application"},
		Dimension: "environment",
		Value:     "elapsed",
		Agg:       pivot.First,
		Missing:   nil,
		Order:     pivot.CanonicalOrder(envOrder),
		Label: func(env string) string {
			return pivot.FlattenPivotLabel(lagPrefix, lagPrefix, env)
		},
	})
	if err != nil {
		return nil, err
	}
	envCols := frame.Columns[1:]

	frame.Filter(func(row map[string]any) bool {
		for _, c := range envCols {
			if d, ok := row[c].(time.Duration); ok && d != 0 {
				return true
			}
		}
		return false
	})

	for _, row := range frame.Rows {
		for _, c := range envCols {
			row[c] = lagCell(row[c], mode)
		}
	}

	frame.SortRows(func(a, b map[string]any) bool {
		return asString(a["application"]) < asString(b["application"])
	})
	return frame, nil
}

// latestGap returns the time between the two highest-id deployments.
func latestGap(deps []deployment) time.Duration {
	sorted := append([]deployment(nil), deps...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].id > sorted[j].id })
	if len(sorted) < 2 {
		return 0
	}
	return sorted[0].start.Sub(sorted[1].start)
}

func lagCell(v any, mode models.LagMode) any {
	d, ok := v.(time.Duration)
	if mode == models.LagDays {
		if !ok {
			return 0.0
		}
		return derive.LagDays(d)
	}
	if !ok {
		return ""
	}
	return derive.FormatDuration(d)
}
