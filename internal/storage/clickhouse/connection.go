// Package clickhouse opens a ClickHouse scorecard store via the
// database/sql interface of clickhouse-go.
package clickhouse

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

const (
	defaultMaxOpenConns = 10
	defaultMaxIdleConns = 5
	defaultDialTimeout  = 10 * time.Second
	defaultMaxRetries   = 3
	defaultRetryDelay   = 1 * time.Second
)

// ConnectionConfig holds ClickHouse connection parameters
type ConnectionConfig struct {
	Addr         string
	Database     string
	Username     string
	Password     string
	MaxOpenConns int
	MaxIdleConns int
	DialTimeout  time.Duration
	MaxRetries   int
	TLS          *tls.Config
}

// DefaultConfig returns a connection config with sensible defaults
func DefaultConfig() *ConnectionConfig {
	return &ConnectionConfig{
		Addr:         "localhost:9000",
		Database:     "dm",
		Username:     "default",
		Password:     "",
		MaxOpenConns: defaultMaxOpenConns,
		MaxIdleConns: defaultMaxIdleConns,
		DialTimeout:  defaultDialTimeout,
		MaxRetries:   defaultMaxRetries,
		TLS:          nil, // No TLS for local development
	}
}

func (c *ConnectionConfig) options() *clickhouse.Options {
	return &clickhouse.Options{
		Addr: []string{c.Addr},
		Auth: clickhouse.Auth{
			Database: c.Database,
			Username: c.Username,
			Password: c.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      c.DialTimeout,
		MaxOpenConns:     c.MaxOpenConns,
		MaxIdleConns:     c.MaxIdleConns,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
		TLS:              c.TLS,
	}
}

// Connect opens a ClickHouse database handle and verifies it with a ping,
// retrying with exponential backoff while the server comes up.
func Connect(ctx context.Context, config *ConnectionConfig) (*sql.DB, error) {
	if config == nil {
		config = DefaultConfig()
	}

	db := clickhouse.OpenDB(config.options())

	var err error
	retryDelay := defaultRetryDelay
	for attempt := 1; attempt <= config.MaxRetries; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return db, nil
		}

		if attempt < config.MaxRetries {
			select {
			case <-ctx.Done():
				db.Close()
				return nil, ctx.Err()
			case <-time.After(retryDelay):
				// Exponential backoff
				retryDelay *= 2
			}
		}
	}

	db.Close()
	return nil, fmt.Errorf("failed to connect to ClickHouse after %d attempts: %w", config.MaxRetries, err)
}
