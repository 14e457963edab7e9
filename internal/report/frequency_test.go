package report

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/fidde/scorecard/pkg/models"
)

func TestBuildFrequency(t *testing.T) {
	records := []models.Record{
		{"application": "shop", "environment": "Prod", "weekly": "2024-01-08"},
		{"application": "shop", "environment": "Dev", "weekly": "2024-01-08"},
		{"application": "shop", "environment": "Dev", "weekly": []byte("2024-01-08")},
		{"application": "shop", "environment": "Dev", "weekly": time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"application": "cart", "environment": "Prod", "weekly": "2024-01-15"},
	}

	frame, err := BuildFrequency(records, []string{"Dev", "Prod"}, models.BucketWeek)
	if err != nil {
		t.Fatalf("BuildFrequency failed: %v", err)
	}

	wantCols := []string{"application", "environment", "2024-01-15", "2024-01-08"}
	if !reflect.DeepEqual(frame.Columns, wantCols) {
		t.Fatalf("expected columns %v, got %v", wantCols, frame.Columns)
	}

	type key struct{ app, env string }
	var got []key
	for _, row := range frame.Rows {
		got = append(got, key{row["application"].(string), row["environment"].(string)})
	}
	want := []key{{"cart", "Prod"}, {"shop", "Dev"}, {"shop", "Prod"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected row order %v, got %v", want, got)
	}

	shopDev := frame.Rows[1]
	if shopDev["2024-01-08"] != int64(2) || shopDev["2024-01-15"] != int64(1) {
		t.Errorf("unexpected counts %v", shopDev)
	}
	if frame.Rows[0]["2024-01-08"] != int64(0) {
		t.Errorf("expected empty bucket to count 0, got %#v", frame.Rows[0]["2024-01-08"])
	}
}

func TestBuildFrequencyMonthly(t *testing.T) {
	records := []models.Record{
		{"application": "shop", "environment": "Dev", "weekly": "2024-01-08"},
		{"application": "shop", "environment": "Dev", "weekly": "2024-01-29"},
		{"application": "shop", "environment": "Dev", "weekly": "2024-02-05"},
	}

	frame, err := BuildFrequency(records, nil, models.BucketMonth)
	if err != nil {
		t.Fatalf("BuildFrequency failed: %v", err)
	}
	if want := []string{"application", "environment", "2024-02", "2024-01"}; !reflect.DeepEqual(frame.Columns, want) {
		t.Fatalf("expected columns %v, got %v", want, frame.Columns)
	}
	if frame.Rows[0]["2024-01"] != int64(2) {
		t.Errorf("expected 2 deployments in January, got %v", frame.Rows[0]["2024-01"])
	}
}

func TestBuildFrequencyBadTimestamp(t *testing.T) {
	records := []models.Record{{"application": "shop", "environment": "Dev", "weekly": "last tuesday"}}

	_, err := BuildFrequency(records, nil, models.BucketWeek)
	var sm *models.ShapeMismatchError
	if !errors.As(err, &sm) || sm.Field != "weekly" {
		t.Errorf("expected weekly shape mismatch, got %v", err)
	}
}
