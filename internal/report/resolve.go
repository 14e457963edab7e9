package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fidde/scorecard/pkg/models"
)

// Executor runs one parametrized store query.
type Executor interface {
	Execute(ctx context.Context, query string, args ...any) ([]models.Record, error)
}

// LoadEnvironmentOrder reads the canonical environment ordering. Duplicate
// names keep their first position; an empty table is a valid empty order.
func LoadEnvironmentOrder(ctx context.Context, exec Executor, q Queries) ([]string, error) {
	records, err := exec.Execute(ctx, q.EnvOrder())
	if err != nil {
		return nil, fmt.Errorf("loading environment order: %w", err)
	}

	order := make([]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		name, ok := rec.String("envname")
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		order = append(order, name)
	}
	return order, nil
}

// ScopeSet is the set of domain ids visible to a request. An unscoped set
// places no restriction; a scoped set with no ids hides everything.
type ScopeSet struct {
	Scoped bool
	IDs    []int64
}

// Unscoped returns the set that places no restriction.
func Unscoped() ScopeSet {
	return ScopeSet{}
}

// Empty reports whether the set is scoped and hides every row.
func (s ScopeSet) Empty() bool {
	return s.Scoped && len(s.IDs) == 0
}

// Contains reports whether id is visible.
func (s ScopeSet) Contains(id int64) bool {
	if !s.Scoped {
		return true
	}
	i := sort.Search(len(s.IDs), func(i int) bool { return s.IDs[i] >= id })
	return i < len(s.IDs) && s.IDs[i] == id
}

// Domain is one node of the domain tree.
type Domain struct {
	ID     int64
	Parent *int64
	Name   string
}

// Closure returns root and all of its transitive descendants, sorted. It
// returns nil when root is not a known domain. Cycles are tolerated.
func Closure(root int64, domains []Domain) []int64 {
	known := false
	children := make(map[int64][]int64, len(domains))
	for _, d := range domains {
		if d.ID == root {
			known = true
		}
		if d.Parent != nil && *d.Parent != d.ID {
			children[*d.Parent] = append(children[*d.Parent], d.ID)
		}
	}
	if !known {
		return nil
	}

	visited := map[int64]bool{root: true}
	queue := []int64{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range children[id] {
			if !visited[child] {
				visited[child] = true
				queue = append(queue, child)
			}
		}
	}

	out := make([]int64, 0, len(visited))
	for id := range visited {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FullName returns the dotted path of domain names from the tree root down
// to id, e.g. "GLOBAL.Shop.Cart". It is empty when id is unknown or has no
// name of its own.
func FullName(id int64, domains []Domain) string {
	byID := make(map[int64]Domain, len(domains))
	for _, d := range domains {
		byID[d.ID] = d
	}
	d, ok := byID[id]
	if !ok || d.Name == "" {
		return ""
	}

	var names []string
	visited := make(map[int64]bool)
	for ok && !visited[d.ID] {
		visited[d.ID] = true
		if d.Name != "" {
			names = append(names, d.Name)
		}
		if d.Parent == nil {
			break
		}
		d, ok = byID[*d.Parent]
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, ".")
}

// ResolveScope expands root into its scope and display name. A nil root
// yields the unscoped set; an unknown root yields an empty scoped set.
func ResolveScope(ctx context.Context, exec Executor, q Queries, root *int64) (ScopeSet, string, error) {
	if root == nil {
		return Unscoped(), "", nil
	}

	records, err := exec.Execute(ctx, q.Domains())
	if err != nil {
		return ScopeSet{}, "", fmt.Errorf("resolving domain scope: %w", err)
	}

	domains := make([]Domain, 0, len(records))
	for i, rec := range records {
		id, ok := rec.Int("id")
		if !ok {
			return ScopeSet{}, "", &models.ShapeMismatchError{Field: "id", Row: i, Reason: "domain id missing"}
		}
		d := Domain{ID: id}
		if parent, ok := rec.Int("domainid"); ok {
			d.Parent = &parent
		}
		d.Name, _ = rec.String("name")
		domains = append(domains, d)
	}

	ids := Closure(*root, domains)
	return ScopeSet{Scoped: true, IDs: ids}, FullName(*root, domains), nil
}
