// Package sqlite opens the SQLite scorecard store used for local
// development and tests.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed migrations/001_initial_schema.up.sql
var migrationSQL string

// Config holds SQLite store configuration.
type Config struct {
	DBPath       string
	MaxOpenConns int
}

// DefaultConfig returns default SQLite configuration.
func DefaultConfig(dbPath string) Config {
	return Config{
		DBPath:       dbPath,
		MaxOpenConns: 4,
	}
}

// Open opens the database at cfg.DBPath. Pragmas travel in the DSN so
// every pooled connection gets them. An in-memory database is limited to
// one connection so every query sees the same data.
func Open(cfg Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(cfg.DBPath))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if isMemory(cfg.DBPath) {
		db.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

var pragmas = []string{
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
	"journal_mode(WAL)",
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	var b strings.Builder
	b.WriteString(path)
	for _, p := range pragmas {
		if isMemory(path) && strings.HasPrefix(p, "journal_mode") {
			continue
		}
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

// Migrate creates the scorecard tables and views when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, migrationSQL); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}
