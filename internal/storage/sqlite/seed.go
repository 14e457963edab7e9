package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Fixture is a YAML description of scorecard data for local development.
type Fixture struct {
	EnvOrder     []string            `yaml:"env_order"`
	Domains      []FixtureDomain     `yaml:"domains"`
	Environments []FixtureNamed      `yaml:"environments"`
	Applications []FixtureApp        `yaml:"applications"`
	Components   []FixtureComponent  `yaml:"components"`
	Deployments  []FixtureDeployment `yaml:"deployments"`
}

// FixtureDomain is one node of the domain tree. Parent is nil for roots.
type FixtureDomain struct {
	ID     int64  `yaml:"id"`
	Name   string `yaml:"name"`
	Parent *int64 `yaml:"parent"`
}

// FixtureNamed is an id/name pair.
type FixtureNamed struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

// FixtureApp is an application registered under a domain.
type FixtureApp struct {
	ID     int64  `yaml:"id"`
	Name   string `yaml:"name"`
	Domain int64  `yaml:"domain"`
	Status string `yaml:"status"`
}

// FixtureComponent is a component, the applications using it and its
// name/value scorecard facts.
type FixtureComponent struct {
	ID     int64             `yaml:"id"`
	Name   string            `yaml:"name"`
	Status string            `yaml:"status"`
	Apps   []int64           `yaml:"apps"`
	Facts  map[string]string `yaml:"facts"`
}

// FixtureDeployment is one deployment of an application to an environment.
type FixtureDeployment struct {
	ID    int64     `yaml:"id"`
	App   int64     `yaml:"app"`
	Env   int64     `yaml:"env"`
	Start time.Time `yaml:"start"`
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture YAML.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &f, nil
}

// Seed inserts the fixture in one transaction.
func Seed(ctx context.Context, db *sql.DB, f *Fixture) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	exec := func(query string, args ...any) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
		return nil
	}

	for i, name := range f.EnvOrder {
		if err := exec("INSERT INTO dm_env_order (id, envname) VALUES (?, ?)", i+1, name); err != nil {
			return err
		}
	}
	for _, d := range f.Domains {
		if err := exec("INSERT INTO dm_domain (id, name, domainid) VALUES (?, ?, ?)", d.ID, d.Name, d.Parent); err != nil {
			return err
		}
	}
	for _, e := range f.Environments {
		if err := exec("INSERT INTO dm_environment (id, name) VALUES (?, ?)", e.ID, e.Name); err != nil {
			return err
		}
	}
	for _, a := range f.Applications {
		if err := exec("INSERT INTO dm_application (id, name, domainid, status) VALUES (?, ?, ?, ?)",
			a.ID, a.Name, a.Domain, statusOrActive(a.Status)); err != nil {
			return err
		}
	}
	for _, c := range f.Components {
		if err := exec("INSERT INTO dm_component (id, name, status) VALUES (?, ?, ?)", c.ID, c.Name, statusOrActive(c.Status)); err != nil {
			return err
		}
		for _, app := range c.Apps {
			if err := exec("INSERT INTO dm_applicationcomponent (appid, compid) VALUES (?, ?)", app, c.ID); err != nil {
				return err
			}
		}
		for name, value := range c.Facts {
			if err := exec("INSERT INTO dm_scorecard_nv (id, name, value) VALUES (?, ?, ?)", c.ID, name, value); err != nil {
				return err
			}
		}
	}
	for _, d := range f.Deployments {
		if err := exec("INSERT INTO dm_deployment (deploymentid, appid, envid, startts) VALUES (?, ?, ?, ?)",
			d.ID, d.App, d.Env, d.Start.UTC().Format("2006-01-02 15:04:05")); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func statusOrActive(s string) string {
	if s == "" {
		return "N"
	}
	return s
}
