package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fidde/scorecard/pkg/models"
)

// fakePool hands out fakeConns that fail the first failures queries with
// failErr and succeed afterwards.
type fakePool struct {
	failures int
	failErr  error
	calls    int
	acquired int
	closed   int
}

func (p *fakePool) Conn(ctx context.Context) (Conn, error) {
	p.acquired++
	return &fakeConn{pool: p}, nil
}

func (p *fakePool) Ping(ctx context.Context) error { return nil }
func (p *fakePool) Close() error                   { return nil }

type fakeConn struct {
	pool *fakePool
}

func (c *fakeConn) Query(ctx context.Context, query string, args ...any) ([]models.Record, error) {
	c.pool.calls++
	if c.pool.calls <= c.pool.failures {
		return nil, c.pool.failErr
	}
	return []models.Record{{"envname": "prod"}}, nil
}

func (c *fakeConn) Close() error {
	c.pool.closed++
	return nil
}

func newTestExecutor(pool Pool) (*Executor, *[]time.Duration) {
	var slept []time.Duration
	e := NewExecutor(pool, DefaultRetryPolicy(), nil, nil)
	e.sleep = func(d time.Duration) { slept = append(slept, d) }
	return e, &slept
}

func TestExecuteRetriesTransient(t *testing.T) {
	pool := &fakePool{failures: 2, failErr: &models.TransientStoreError{Err: errors.New("connection reset")}}
	e, slept := newTestExecutor(pool)
	defer e.Close()

	records, err := e.Execute(context.Background(), "SELECT envname FROM dm_env_order")
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record, got %d", len(records))
	}
	if pool.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", pool.calls)
	}
	if pool.acquired != 3 {
		t.Errorf("expected a fresh connection per attempt, got %d acquisitions", pool.acquired)
	}
	if len(*slept) != 2 || (*slept)[0] != 200*time.Millisecond {
		t.Errorf("expected two 200ms sleeps, got %v", *slept)
	}
}

func TestExecuteExhaustsRetries(t *testing.T) {
	cause := errors.New("connection refused")
	pool := &fakePool{failures: 10, failErr: &models.TransientStoreError{Err: cause}}
	e, slept := newTestExecutor(pool)
	defer e.Close()

	_, err := e.Execute(context.Background(), "SELECT 1")
	var te *models.TransientStoreError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransientStoreError, got %v", err)
	}
	if te.Attempts != 3 {
		t.Errorf("expected 3 attempts recorded, got %d", te.Attempts)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected last cause to be wrapped, got %v", err)
	}
	if pool.calls != 3 {
		t.Errorf("expected no more than 3 attempts, got %d", pool.calls)
	}
	if len(*slept) != 2 {
		t.Errorf("expected no sleep after the last attempt, got %v", *slept)
	}
}

func TestExecuteDoesNotRetryQueryError(t *testing.T) {
	pool := &fakePool{failures: 1, failErr: &models.QueryError{Err: errors.New("syntax error")}}
	e, slept := newTestExecutor(pool)
	defer e.Close()

	_, err := e.Execute(context.Background(), "SELEC 1")
	var qe *models.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("expected QueryError, got %v", err)
	}
	if pool.calls != 1 {
		t.Errorf("expected a single attempt, got %d", pool.calls)
	}
	if len(*slept) != 0 {
		t.Errorf("expected no sleep, got %v", *slept)
	}
}

func TestExecuteIgnoresCallerCancellation(t *testing.T) {
	pool := &fakePool{failures: 1, failErr: &models.TransientStoreError{Err: errors.New("broken pipe")}}
	e, _ := newTestExecutor(pool)
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Execute(ctx, "SELECT 1"); err != nil {
		t.Fatalf("expected retry loop to complete after cancellation, got %v", err)
	}
}

func TestExecuteReusesConnection(t *testing.T) {
	pool := &fakePool{}
	e, _ := newTestExecutor(pool)

	for i := 0; i < 3; i++ {
		if _, err := e.Execute(context.Background(), "SELECT 1"); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
	}
	if pool.acquired != 1 {
		t.Errorf("expected one connection for the request, got %d", pool.acquired)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if pool.closed != 1 {
		t.Errorf("expected connection released on close, got %d", pool.closed)
	}
}
