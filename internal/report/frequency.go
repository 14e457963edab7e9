package report

import (
	"github.com/fidde/scorecard/internal/pivot"
	"github.com/fidde/scorecard/pkg/models"
)

// BuildFrequency pivots weekly deployment facts into one row per
// (application, environment) and one column per time bucket, most recent
// bucket first. Buckets without deployments count 0.
func BuildFrequency(records []models.Record, envOrder []string, bucket models.Bucket) (*pivot.Frame, error) {
	layout := "2006-01-02"
	if bucket == models.BucketMonth {
		layout = "2006-01"
	}

	facts := make([]models.Record, 0, len(records))
	for i, rec := range records {
		ts, ok := rec.Time("weekly")
		if !ok {
			return nil, &models.ShapeMismatchError{Field: "weekly", Row: i, Reason: "bucket timestamp missing or unparseable"}
		}
		facts = append(facts, models.Record{
			"application": rec["application"],
			"environment": rec["environment"],
			"bucket":      ts.Format(layout),
		})
	}

	frame, err := pivot.Pivot(facts, pivot.Spec{
		RowKey:    []string{"application", "environment"},
		Dimension: "bucket",
		Agg:       pivot.Count,
		Missing:   int64(0),
		Order:     pivot.Descending,
		Label: func(dim string) string {
			return pivot.FlattenPivotLabel("", dim)
		},
	})
	if err != nil {
		return nil, err
	}

	rank := envRank(envOrder, frame.Rows)
	frame.SortRows(func(a, b map[string]any) bool {
		appA, appB := asString(a["application"]), asString(b["application"])
		if appA != appB {
			return appA < appB
		}
		return rank[asString(a["environment"])] < rank[asString(b["environment"])]
	})
	return frame, nil
}

// envRank maps every environment in rows to its canonical position.
func envRank(envOrder []string, rows []map[string]any) map[string]int {
	var observed []string
	for _, row := range rows {
		observed = append(observed, asString(row["environment"]))
	}
	ordered := pivot.OrderDimensions(envOrder, observed)
	rank := make(map[string]int, len(ordered))
	for i, env := range ordered {
		rank[env] = i
	}
	return rank
}

func asString(v any) string {
	s, _ := models.Record{"v": v}.String("v")
	return s
}
