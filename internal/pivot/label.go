package pivot

import (
	"regexp"
	"strings"
)

// segmentPattern matches one label segment: any character followed by a run
// of non-uppercase characters. "GitLinesAdded" yields Git, Lines, Added.
var segmentPattern = regexp.MustCompile(`.[^A-Z]*`)

// FlattenPivotLabel collapses a multi-level pivot label into a single column
// key. Parts are joined with underscores and trailing underscores dropped,
// the dimension prefix (e.g. "value" or "diff") is stripped from the front,
// and the remainder is split before every uppercase letter and re-joined
// with underscores.
//
//	FlattenPivotLabel("value", "value", "GitLinesAdded") == "Git_Lines_Added"
//	FlattenPivotLabel("diff", "application", "")       == "application"
//
// Column keys reach the UI unchanged, so this rule must stay stable.
func FlattenPivotLabel(prefix string, parts ...string) string {
	joined := strings.TrimRight(strings.Join(parts, "_"), "_")
	if prefix != "" {
		joined = strings.TrimPrefix(joined, prefix+"_")
	}
	return strings.Join(segmentPattern.FindAllString(joined, -1), "_")
}
