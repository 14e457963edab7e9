package storage

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/fidde/scorecard/internal/storage/clickhouse"
	"github.com/fidde/scorecard/internal/storage/postgres"
	"github.com/fidde/scorecard/internal/storage/sqlite"
)

// Supported backends.
const (
	BackendPostgres   = "postgres"
	BackendSQLite     = "sqlite"
	BackendClickHouse = "clickhouse"
)

// Config holds storage configuration.
type Config struct {
	// Backend selects the store: "postgres", "sqlite" or "clickhouse".
	Backend string

	// DSN overrides Host/Port/Name/User/Password for postgres and is the
	// database path for sqlite.
	DSN  string
	Host string
	// Port, Name and User fall back to the backend's own defaults when
	// zero or empty (5432/postgres/postgres, 9000/dm/default).
	Port     int
	Name     string
	User     string
	Password string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns default storage configuration.
func DefaultConfig() Config {
	return Config{
		Backend:         BackendPostgres,
		Host:            "localhost",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	}
}

// NewStorage opens the configured backend.
func NewStorage(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case BackendPostgres:
		pg := postgres.DefaultConfig()
		pg.DSN = cfg.DSN
		if cfg.Host != "" {
			pg.Host = cfg.Host
		}
		if cfg.Port > 0 {
			pg.Port = cfg.Port
		}
		if cfg.Name != "" {
			pg.Database = cfg.Name
		}
		if cfg.User != "" {
			pg.Username = cfg.User
		}
		pg.Password = cfg.Password
		if cfg.MaxOpenConns > 0 {
			pg.MaxOpenConns = cfg.MaxOpenConns
		}
		if cfg.MaxIdleConns > 0 {
			pg.MaxIdleConns = cfg.MaxIdleConns
		}
		if cfg.ConnMaxLifetime > 0 {
			pg.ConnMaxLifetime = cfg.ConnMaxLifetime
		}

		logger.Info("using postgres storage", zap.String("host", pg.Host), zap.Int("port", pg.Port), zap.String("database", pg.Database))
		db, err := postgres.Open(pg)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(db, Dollar, cfg.Backend), nil

	case BackendSQLite:
		path := cfg.DSN
		if path == "" {
			path = ":memory:"
		}
		logger.Info("using sqlite storage", zap.String("path", path))
		lite := sqlite.DefaultConfig(path)
		if cfg.MaxOpenConns > 0 {
			lite.MaxOpenConns = cfg.MaxOpenConns
		}
		db, err := sqlite.Open(lite)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(db, Question, cfg.Backend), nil

	case BackendClickHouse:
		ch := clickhouseConfig(cfg)
		logger.Info("using clickhouse storage", zap.String("addr", ch.Addr), zap.String("database", ch.Database))
		db, err := clickhouse.Connect(ctx, ch)
		if err != nil {
			return nil, fmt.Errorf("creating ClickHouse store: %w", err)
		}
		return NewSQLStore(db, Question, cfg.Backend), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: postgres, sqlite, clickhouse)", cfg.Backend)
	}
}

// clickhouseConfig maps cfg onto clickhouse connection parameters, keeping
// the clickhouse defaults for unset fields.
func clickhouseConfig(cfg Config) *clickhouse.ConnectionConfig {
	ch := clickhouse.DefaultConfig()
	host, port, _ := net.SplitHostPort(ch.Addr)
	if cfg.Host != "" {
		host = cfg.Host
	}
	if cfg.Port > 0 {
		port = strconv.Itoa(cfg.Port)
	}
	ch.Addr = net.JoinHostPort(host, port)
	if cfg.Name != "" {
		ch.Database = cfg.Name
	}
	if cfg.User != "" {
		ch.Username = cfg.User
	}
	ch.Password = cfg.Password
	if cfg.MaxOpenConns > 0 {
		ch.MaxOpenConns = cfg.MaxOpenConns
	}
	if cfg.MaxIdleConns > 0 {
		ch.MaxIdleConns = cfg.MaxIdleConns
	}
	return ch
}
