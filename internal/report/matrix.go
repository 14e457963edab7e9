package report

import (
	"strings"

	"github.com/fidde/scorecard/internal/derive"
	"github.com/fidde/scorecard/internal/pivot"
	"github.com/fidde/scorecard/internal/reconcile"
	"github.com/fidde/scorecard/pkg/models"
)

const (
	factPrefix = "value"
	envPrefix  = "Environment_"
)

// matrixKey is the row identity of the scorecard matrix. The first three
// fields are internal and not serialized.
var matrixKey = []string{"appid", "compid", "domainid", "application", "component"}

// matrixHidden is the number of leading matrix columns left out of the grid.
const matrixHidden = 3

var matrixLayout = reconcile.Layout{
	Columns: []string{
		"appid",
		"compid",
		"domainid",
		"application",
		"component",
		"license",
		"readme",
		"swagger",
		"Lines_Changed",
		"Contributing_Committers",
		"Git_Total_Committers_Cnt",
		"Job_Triggered_By",
		"Sonar_Bugs",
		"Sonar_Code_Smells",
		"Sonar_Violations",
		"Sonar_Project_Status",
		"Veracode_Score",
	},
	Rename: map[string]string{
		"Job_Triggered_By":         "Git_Trigger",
		"Git_Total_Committers_Cnt": "Total_Committers",
	},
}

// BuildMatrix builds the scorecard matrix: one row per (application,
// component) carrying the reconciled metric columns, derived ratios and a
// Y marker for every environment the application was deployed to.
func BuildMatrix(facts, deployments []models.Record, envOrder []string) (*pivot.Frame, error) {
	apps, err := pivot.Pivot(facts, pivot.Spec{
		RowKey:    matrixKey,
		Dimension: "name",
		Value:     "value",
		Agg:       pivot.First,
		Missing:   nil,
		Label: func(name string) string {
			return pivot.FlattenPivotLabel(factPrefix, factPrefix, name)
		},
	})
	if err != nil {
		return nil, err
	}

	reconcile.Scorecard.Apply(apps)
	applyDerived(apps)
	matrixLayout.Apply(apps)

	envs, err := pivot.Pivot(deployments, pivot.Spec{
		RowKey:    []string{"appid"},
		Dimension: "environment",
		Value:     "environment",
		Agg:       pivot.First,
		Missing:   nil,
		Order:     pivot.CanonicalOrder(envOrder),
		Label: func(env string) string {
			return envPrefix + env
		},
	})
	if err != nil {
		return nil, err
	}

	apps.LeftJoin(envs, "appid")
	for _, col := range envs.Columns[1:] {
		for _, row := range apps.Rows {
			row[col] = membership(row[col])
		}
	}
	apps.Fill("")

	apps.SortRows(func(a, b map[string]any) bool {
		ka, kb := derive.VersionKey(asString(a["application"])), derive.VersionKey(asString(b["application"]))
		if ka != kb {
			return ka > kb
		}
		return asString(a["component"]) > asString(b["component"])
	})
	return apps, nil
}

// applyDerived replaces raw git counters with percentage columns and turns
// the recorded trigger source into a Y/N flag.
func applyDerived(f *pivot.Frame) {
	f.Apply("Lines_Changed", func(row map[string]any) any {
		return derive.PercentLinesChanged(
			reconcile.ToInt(row["Git_Lines_Added"]),
			reconcile.ToInt(row["Git_Lines_Deleted"]),
			reconcile.ToInt(row["Git_Lines_Total"]),
		)
	})
	f.Apply("Contributing_Committers", func(row map[string]any) any {
		return derive.PercentContributingCommitters(
			reconcile.ToInt(row["Git_Committers_Cnt"]),
			reconcile.ToInt(row["Git_Total_Committers_Cnt"]),
		)
	})
	f.Apply("Job_Triggered_By", func(row map[string]any) any {
		return derive.CITriggerFlag(asString(row["Job_Triggered_By"]))
	})
	f.Drop("Git_Lines_Added", "Git_Lines_Deleted", "Git_Lines_Total", "Git_Committers_Cnt")
}

// membership renders "Y" for any non-blank environment cell.
func membership(v any) any {
	if v == nil || strings.TrimSpace(asString(v)) == "" {
		return ""
	}
	return "Y"
}
