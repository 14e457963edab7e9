package pivot

import "sort"

// OrderFunc orders the distinct dimension values observed in a result set.
type OrderFunc func(observed []string) []string

// CanonicalOrder returns an OrderFunc that places observed values listed in
// order first, in that order, followed by the remaining observed values
// sorted by name. Duplicates in order keep their first position.
func CanonicalOrder(order []string) OrderFunc {
	return func(observed []string) []string {
		return OrderDimensions(order, observed)
	}
}

// OrderDimensions applies the canonical ordering rule to observed.
func OrderDimensions(order []string, observed []string) []string {
	seen := make(map[string]bool, len(observed))
	for _, v := range observed {
		seen[v] = true
	}

	out := make([]string, 0, len(seen))
	placed := make(map[string]bool, len(seen))
	for _, name := range order {
		if seen[name] && !placed[name] {
			out = append(out, name)
			placed[name] = true
		}
	}

	rest := make([]string, 0, len(seen)-len(out))
	for v := range seen {
		if !placed[v] {
			rest = append(rest, v)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Ascending sorts observed values by name.
func Ascending(observed []string) []string {
	out := unique(observed)
	sort.Strings(out)
	return out
}

// Descending sorts observed values by name, largest first. Used for time
// buckets so the most recent bucket comes first.
func Descending(observed []string) []string {
	out := unique(observed)
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

func unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
