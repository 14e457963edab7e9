// Package derive computes display metrics from raw counts and timestamps.
package derive

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// FirstDeployment is rendered for a lag of exactly zero.
const FirstDeployment = "1st deployment"

// Ratio returns round(numerator/denominator, 2) * 100. A zero denominator
// yields 0, never NaN or Inf.
func Ratio(numerator, denominator int64) float64 {
	if denominator == 0 {
		return 0
	}
	r := float64(numerator) / float64(denominator)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return math.Round(r * 100)
}

// PercentLinesChanged is the share of total lines touched by a change.
func PercentLinesChanged(added, deleted, total int64) float64 {
	return Ratio(added+deleted, total)
}

// PercentContributingCommitters is the share of all committers that
// contributed to a change.
func PercentContributingCommitters(onChange, total int64) float64 {
	return Ratio(onChange, total)
}

var scmTriggers = []string{"scm", "git", "push", "webhook", "commit", "merge", "pull request"}

// CITriggerFlag returns "Y" when source names an automated, source-control
// driven build trigger and "N" otherwise.
func CITriggerFlag(source string) string {
	s := strings.ToLower(strings.TrimSpace(source))
	if s == "" {
		return "N"
	}
	for _, marker := range scmTriggers {
		if strings.Contains(s, marker) {
			return "Y"
		}
	}
	return "N"
}

// FormatDuration renders elapsed as "Nd, Nh, Nm", omitting zero units.
// Zero renders as FirstDeployment; a non-zero lag under a minute renders
// as "0m". Negative values are rendered by magnitude; seconds are dropped.
func FormatDuration(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = -elapsed
	}
	if elapsed == 0 {
		return FirstDeployment
	}

	total := int64(elapsed / time.Minute)
	days := total / (24 * 60)
	hours := (total % (24 * 60)) / 60
	minutes := total % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if len(parts) == 0 {
		return "0m"
	}
	return strings.Join(parts, ", ")
}

// LagDays returns elapsed as a day count rounded to two decimals.
func LagDays(elapsed time.Duration) float64 {
	if elapsed < 0 {
		elapsed = -elapsed
	}
	return math.Round(elapsed.Hours()/24*100) / 100
}

const versionWidth = 10

var digitRun = regexp.MustCompile(`[0-9]+`)

// VersionKey returns name with every run of digits left-padded with zeros
// to a fixed width, so lexicographic order matches numeric order:
// VersionKey("App2") < VersionKey("App10").
func VersionKey(name string) string {
	return digitRun.ReplaceAllStringFunc(name, func(run string) string {
		if len(run) >= versionWidth {
			return run
		}
		return strings.Repeat("0", versionWidth-len(run)) + run
	})
}
