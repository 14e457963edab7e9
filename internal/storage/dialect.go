package storage

import (
	"strconv"
	"strings"
)

// Dialect is a placeholder style. Report SQL is written with '?' and
// rebound per backend.
type Dialect int

const (
	// Question keeps '?' placeholders (sqlite, clickhouse).
	Question Dialect = iota
	// Dollar rewrites placeholders to $1, $2, ... (postgres).
	Dollar
)

// Rebind rewrites '?' placeholders for d. Question marks inside single
// quoted literals are left alone.
func Rebind(d Dialect, query string) string {
	if d != Dollar || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Placeholders returns n comma separated '?' markers for an IN list.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
