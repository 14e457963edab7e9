package derive

import (
	"math"
	"sort"
	"testing"
	"time"
)

func TestRatioZeroDivision(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"lines zero total", PercentLinesChanged(10, 5, 0), 0},
		{"committers zero total", PercentContributingCommitters(3, 0), 0},
		{"all zero", PercentLinesChanged(0, 0, 0), 0},
		{"lines changed", PercentLinesChanged(30, 28, 100), 58},
		{"rounded to two places before scaling", PercentLinesChanged(1, 0, 3), 33},
		{"committers", PercentContributingCommitters(1, 4), 25},
		{"more than total", PercentContributingCommitters(6, 4), 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.IsNaN(tt.got) || math.IsInf(tt.got, 0) {
				t.Fatalf("expected finite value, got %v", tt.got)
			}
			if tt.got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, tt.got)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    string
	}{
		{0, FirstDeployment},
		{90061 * time.Second, "1d, 1h, 1m"},
		{61 * time.Second, "1m"},
		{2 * time.Hour, "2h"},
		{3*24*time.Hour + 5*time.Minute, "3d, 5m"},
		{24 * time.Hour, "1d"},
		{30 * time.Second, "0m"},
		{-90 * time.Minute, "1h, 30m"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.elapsed); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.elapsed, got, tt.want)
		}
	}
}

func TestLagDays(t *testing.T) {
	if got := LagDays(36 * time.Hour); got != 1.5 {
		t.Errorf("expected 1.5, got %v", got)
	}
	if got := LagDays(time.Hour); got != 0.04 {
		t.Errorf("expected 0.04, got %v", got)
	}
	if got := LagDays(0); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestCITriggerFlag(t *testing.T) {
	tests := map[string]string{
		"Started by an SCM change": "Y",
		"GitHub push":              "Y",
		"webhook":                  "Y",
		"Started by user admin":    "N",
		"Timer":                    "N",
		"":                         "N",
	}
	for in, want := range tests {
		if got := CITriggerFlag(in); got != want {
			t.Errorf("CITriggerFlag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestVersionKeyOrdering(t *testing.T) {
	names := []string{"App2", "App10", "App1"}
	sort.Slice(names, func(i, j int) bool {
		return VersionKey(names[i]) > VersionKey(names[j])
	})

	want := []string{"App10", "App2", "App1"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}

	if VersionKey("v1.2") != "v0000000001.0000000002" {
		t.Errorf("unexpected key %q", VersionKey("v1.2"))
	}
}
