package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fidde/scorecard/pkg/models"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		in      string
		want    string
	}{
		{"question untouched", Question, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{"dollar", Dollar, "SELECT * FROM t WHERE a = ? AND b IN (?, ?)", "SELECT * FROM t WHERE a = $1 AND b IN ($2, $3)"},
		{"quoted literal", Dollar, "SELECT '?' FROM t WHERE a = ?", "SELECT '?' FROM t WHERE a = $1"},
		{"no placeholders", Dollar, "SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rebind(tt.dialect, tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	if got := Placeholders(3); got != "?, ?, ?" {
		t.Errorf("unexpected placeholders %q", got)
	}
	if got := Placeholders(0); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"bad conn", fmt.Errorf("exec: %w", driver.ErrBadConn), true},
		{"deadline", context.DeadlineExceeded, true},
		{"pg connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"pg admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"pg syntax", &pgconn.PgError{Code: "42601"}, false},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"generic", errors.New("no such table: dm_env_order"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.err, "SELECT 1")
			if got := models.IsTransient(err); got != tt.transient {
				t.Errorf("expected transient=%v, got %v (%v)", tt.transient, got, err)
			}
			if !tt.transient {
				var qe *models.QueryError
				if !errors.As(err, &qe) {
					t.Errorf("expected QueryError, got %T", err)
				}
			}
		})
	}

	if Classify(nil, "") != nil {
		t.Error("expected nil for nil error")
	}
	already := &models.QueryError{Err: errors.New("x")}
	if Classify(already, "") != error(already) {
		t.Error("expected classified error to pass through")
	}
}
