package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.Backend != "postgres" || cfg.Store.Port != 0 || cfg.Store.Host != "localhost" {
		t.Errorf("unexpected store defaults: %+v", cfg.Store)
	}
	if cfg.Schema != "dm" {
		t.Errorf("expected schema dm, got %q", cfg.Schema)
	}
	if cfg.Retry.Attempts != 3 || cfg.Retry.Delay != 200*time.Millisecond {
		t.Errorf("unexpected retry policy: %+v", cfg.Retry)
	}
	if cfg.Addr != ":5010" || cfg.RequestTimeout != time.Minute || cfg.LogLevel != "info" {
		t.Errorf("unexpected server defaults: %+v", cfg)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("SCORECARD_STORE_BACKEND", "SQLite")
	t.Setenv("SCORECARD_STORE_DSN", "dev.db")
	t.Setenv("SCORECARD_STORE_RETRY_DELAY", "50ms")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")

	cfg, err := Load(newViper())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.DSN != "dev.db" {
		t.Errorf("unexpected store: %+v", cfg.Store)
	}
	if cfg.Schema != "" {
		t.Errorf("expected no schema for sqlite, got %q", cfg.Schema)
	}
	if cfg.Retry.Delay != 50*time.Millisecond {
		t.Errorf("expected 50ms delay, got %s", cfg.Retry.Delay)
	}
	if cfg.Store.Host != "db.internal" || cfg.Store.Port != 6543 {
		t.Errorf("expected legacy DB_* variables to apply, got %+v", cfg.Store)
	}
}

func TestLoadPrefixedEnvWinsOverLegacy(t *testing.T) {
	t.Setenv("DB_HOST", "legacy")
	t.Setenv("SCORECARD_STORE_HOST", "preferred")

	cfg, err := Load(newViper())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store.Host != "preferred" {
		t.Errorf("expected preferred host, got %q", cfg.Store.Host)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scorecard.yaml")
	content := "store:\n  backend: clickhouse\n  schema: analytics\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store.Backend != "clickhouse" || cfg.Schema != "analytics" || cfg.LogLevel != "debug" {
		t.Errorf("unexpected config from file: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "oracle" }},
		{"no attempts", func(c *Config) { c.Retry.Attempts = 0 }},
		{"negative delay", func(c *Config) { c.Retry.Delay = -time.Second }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(newViper())
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
