package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fidde/scorecard/internal/storage"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Queries renders the report SQL for one store schema. Only the schema
// name, validated at construction, is ever spliced into SQL text; every
// request value is a bound parameter.
type Queries struct {
	prefix string
}

// NewQueries returns the queries for schema. An empty schema addresses
// unqualified tables.
func NewQueries(schema string) (Queries, error) {
	if schema == "" {
		return Queries{}, nil
	}
	if !identPattern.MatchString(schema) {
		return Queries{}, fmt.Errorf("invalid schema name %q", schema)
	}
	return Queries{prefix: schema + "."}, nil
}

func (q Queries) table(name string) string {
	return q.prefix + name
}

// Filter restricts fact queries to the visible applications.
type Filter struct {
	Scope   ScopeSet
	AppID   *int64
	AppName string
}

// clause renders the AND-ed conditions for the given column names. Column
// names come from the query definitions below, never from requests.
func (f Filter) clause(domainCol, appIDCol, appNameCol string) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	switch {
	case f.Scope.Scoped && len(f.Scope.IDs) == 0:
		b.WriteString(" AND 1 = 0")
	case f.Scope.Scoped:
		fmt.Fprintf(&b, " AND %s IN (%s)", domainCol, storage.Placeholders(len(f.Scope.IDs)))
		for _, id := range f.Scope.IDs {
			args = append(args, id)
		}
	}
	if f.AppID != nil {
		fmt.Fprintf(&b, " AND %s = ?", appIDCol)
		args = append(args, *f.AppID)
	}
	if f.AppName != "" {
		fmt.Fprintf(&b, " AND %s = ?", appNameCol)
		args = append(args, f.AppName)
	}
	return b.String(), args
}

// EnvOrder returns the canonical environment order query.
func (q Queries) EnvOrder() string {
	return "SELECT envname FROM " + q.table("dm_env_order") + " ORDER BY id ASC"
}

// Domains returns the domain edge set query.
func (q Queries) Domains() string {
	return "SELECT id, domainid, name FROM " + q.table("dm_domain")
}

// Frequency returns the deployment frequency fact query.
func (q Queries) Frequency(f Filter) (string, []any) {
	where, args := f.clause("domainid", "appid", "application")
	return "SELECT application, environment, weekly FROM " + q.table("dm_app_scorecard") +
		" WHERE 1 = 1" + where +
		" ORDER BY application, environment, weekly DESC", args
}

// Lag returns the deployment lag fact query.
func (q Queries) Lag(f Filter) (string, []any) {
	where, args := f.clause("domainid", "appid", "application")
	return "SELECT application, environment, deploymentid, startts FROM " + q.table("dm_app_lag") +
		" WHERE 1 = 1" + where +
		" ORDER BY application, environment, deploymentid", args
}

// MatrixEnvironments returns the (application, environment) deployment
// membership query.
func (q Queries) MatrixEnvironments(f Filter) (string, []any) {
	where, args := f.clause("a.domainid", "a.id", "a.name")
	return "SELECT DISTINCT a.id AS appid, b.name AS environment FROM " +
		q.table("dm_application") + " a, " + q.table("dm_environment") + " b, " + q.table("dm_deployment") + " c" +
		" WHERE a.id = c.appid AND c.envid = b.id" + where +
		" ORDER BY 1, 2", args
}

// MatrixFacts returns the name/value scorecard fact query for active
// applications and components.
func (q Queries) MatrixFacts(f Filter) (string, []any) {
	where, args := f.clause("c.domainid", "c.id", "c.name")
	return "SELECT c.domainid AS domainid, c.id AS appid, b.id AS compid, c.name AS application, b.name AS component," +
		" a.name AS name, a.value AS value FROM " +
		q.table("dm_scorecard_nv") + " a, " + q.table("dm_component") + " b, " +
		q.table("dm_application") + " c, " + q.table("dm_applicationcomponent") + " d" +
		" WHERE a.id = b.id AND b.status = 'N' AND c.status = 'N' AND a.id = d.compid AND c.id = d.appid" + where +
		" ORDER BY domainid, appid, compid", args
}
