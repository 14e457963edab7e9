// Package storage defines how the report engine reads from the relational
// store: connection acquisition, one-shot queries and the retrying executor.
package storage

import (
	"context"

	"github.com/fidde/scorecard/pkg/models"
)

// Conn is one acquired store connection. A request holds a single Conn for
// its duration and closes it on every exit path.
type Conn interface {
	// Query runs query once and returns every result row as a Record.
	// Errors are *models.TransientStoreError or *models.QueryError.
	Query(ctx context.Context, query string, args ...any) ([]models.Record, error)
	Close() error
}

// Pool hands out connections. Implementations must be safe for concurrent
// use; the pool is the only state shared across requests.
type Pool interface {
	Conn(ctx context.Context) (Conn, error)
	Ping(ctx context.Context) error
	Close() error
}
