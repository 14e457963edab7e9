package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fidde/scorecard/pkg/models"
)

// Store is a database/sql backed Pool.
type Store struct {
	db      *sql.DB
	dialect Dialect
	backend string
}

// NewSQLStore wraps an opened *sql.DB.
func NewSQLStore(db *sql.DB, dialect Dialect, backend string) *Store {
	return &Store{db: db, dialect: dialect, backend: backend}
}

// DB returns the underlying database handle for migrations and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Backend returns the configured backend name.
func (s *Store) Backend() string {
	return s.backend
}

// Conn acquires one connection from the pool.
func (s *Store) Conn(ctx context.Context) (Conn, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, Classify(fmt.Errorf("acquiring connection: %w", err), "")
	}
	return &sqlConn{conn: conn, dialect: s.dialect}, nil
}

// Ping issues a trivial query to probe store reachability.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return Classify(err, "SELECT 1")
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

type sqlConn struct {
	conn    *sql.Conn
	dialect Dialect
}

func (c *sqlConn) Query(ctx context.Context, query string, args ...any) ([]models.Record, error) {
	query = Rebind(c.dialect, query)
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Classify(err, query)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, Classify(err, query)
	}
	return records, nil
}

func (c *sqlConn) Close() error {
	return c.conn.Close()
}

// scanRecords reads every row into a Record keyed by column name.
func scanRecords(rows *sql.Rows) ([]models.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	var records []models.Record
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		rec := make(models.Record, len(cols))
		for i, col := range cols {
			// The driver may reuse byte slices between rows.
			if b, ok := values[i].([]byte); ok {
				rec[col] = string(b)
				continue
			}
			rec[col] = values[i]
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return records, nil
}
