// Package config loads service configuration from flags, environment
// variables and an optional YAML file through viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/fidde/scorecard/internal/storage"
)

// EnvPrefix prefixes every environment variable, e.g. SCORECARD_STORE_DSN.
const EnvPrefix = "SCORECARD"

// DefaultSchema holds the scorecard tables in production stores.
const DefaultSchema = "dm"

var validBackends = map[string]bool{
	storage.BackendPostgres:   true,
	storage.BackendSQLite:     true,
	storage.BackendClickHouse: true,
}

// legacyEnv maps keys to the environment variables older deployments use.
var legacyEnv = map[string]string{
	"store.host":     "DB_HOST",
	"store.port":     "DB_PORT",
	"store.name":     "DB_NAME",
	"store.user":     "DB_USER",
	"store.password": "DB_PASS",
}

// Config is the resolved service configuration.
type Config struct {
	Store storage.Config
	// Schema qualifies store tables. Unset, it is DefaultSchema except on
	// sqlite.
	Schema string
	Retry  storage.RetryPolicy

	Addr           string
	ReportsDir     string
	RequestTimeout time.Duration

	LogLevel string
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	store := storage.DefaultConfig()
	retry := storage.DefaultRetryPolicy()

	v.SetDefault("store.backend", store.Backend)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.host", store.Host)
	v.SetDefault("store.port", store.Port)
	v.SetDefault("store.name", store.Name)
	v.SetDefault("store.user", store.User)
	v.SetDefault("store.password", "")
	v.SetDefault("store.schema", "")
	v.SetDefault("store.max_open_conns", store.MaxOpenConns)
	v.SetDefault("store.max_idle_conns", store.MaxIdleConns)
	v.SetDefault("store.conn_max_lifetime", store.ConnMaxLifetime)
	v.SetDefault("store.retry.attempts", retry.Attempts)
	v.SetDefault("store.retry.delay", retry.Delay)
	v.SetDefault("store.retry.query_timeout", retry.QueryTimeout)

	v.SetDefault("server.addr", ":5010")
	v.SetDefault("server.reports_dir", "")
	v.SetDefault("server.request_timeout", 60*time.Second)

	v.SetDefault("log.level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		_ = v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), legacy)
	}
}

// Load reads the configuration from v. SetDefaults must have been called.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Store: storage.Config{
			Backend:         strings.ToLower(v.GetString("store.backend")),
			DSN:             v.GetString("store.dsn"),
			Host:            v.GetString("store.host"),
			Port:            v.GetInt("store.port"),
			Name:            v.GetString("store.name"),
			User:            v.GetString("store.user"),
			Password:        v.GetString("store.password"),
			MaxOpenConns:    v.GetInt("store.max_open_conns"),
			MaxIdleConns:    v.GetInt("store.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("store.conn_max_lifetime"),
		},
		Schema: v.GetString("store.schema"),
		Retry: storage.RetryPolicy{
			Attempts:     v.GetInt("store.retry.attempts"),
			Delay:        v.GetDuration("store.retry.delay"),
			QueryTimeout: v.GetDuration("store.retry.query_timeout"),
		},
		Addr:           v.GetString("server.addr"),
		ReportsDir:     v.GetString("server.reports_dir"),
		RequestTimeout: v.GetDuration("server.request_timeout"),
		LogLevel:       v.GetString("log.level"),
	}

	// sqlite has no schemas.
	if cfg.Schema == "" && cfg.Store.Backend != storage.BackendSQLite {
		cfg.Schema = DefaultSchema
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if !validBackends[c.Store.Backend] {
		return fmt.Errorf("invalid store backend: %s (valid: postgres, sqlite, clickhouse)", c.Store.Backend)
	}
	if c.Retry.Attempts < 1 {
		return fmt.Errorf("store.retry.attempts must be at least 1, got %d", c.Retry.Attempts)
	}
	if c.Retry.Delay < 0 {
		return fmt.Errorf("store.retry.delay must not be negative, got %s", c.Retry.Delay)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	return nil
}
