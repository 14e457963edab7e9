package storage

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fidde/scorecard/internal/metrics"
	"github.com/fidde/scorecard/pkg/models"
)

const (
	// DefaultAttempts is the total number of tries for one query.
	DefaultAttempts = 3
	// DefaultRetryDelay is the fixed pause between tries.
	DefaultRetryDelay = 200 * time.Millisecond
)

// RetryPolicy bounds retries of transient store faults.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	// QueryTimeout bounds each attempt. Zero means no per-attempt bound.
	QueryTimeout time.Duration
}

// DefaultRetryPolicy returns 3 attempts with a 200ms fixed delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: DefaultAttempts, Delay: DefaultRetryDelay}
}

// Executor runs queries for one request on a single acquired connection,
// retrying transient faults on a freshly acquired connection. It is not
// safe for concurrent use; create one per request.
//
// Attempts run detached from the caller's cancellation, so a client
// disconnect does not abort an in-flight retry loop.
type Executor struct {
	pool    Pool
	conn    Conn
	policy  RetryPolicy
	logger  *zap.Logger
	metrics *metrics.Metrics
	sleep   func(time.Duration)
}

// NewExecutor creates an executor drawing connections from pool.
func NewExecutor(pool Pool, policy RetryPolicy, logger *zap.Logger, m *metrics.Metrics) *Executor {
	if policy.Attempts <= 0 {
		policy.Attempts = DefaultAttempts
	}
	if policy.Delay < 0 {
		policy.Delay = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		pool:    pool,
		policy:  policy,
		logger:  logger,
		metrics: m,
		sleep:   time.Sleep,
	}
}

// Execute runs query with args. TransientStoreError is retried up to the
// policy bound and then returned with the attempt count; QueryError is
// returned immediately.
func (e *Executor) Execute(ctx context.Context, query string, args ...any) ([]models.Record, error) {
	ctx = context.WithoutCancel(ctx)

	var lastErr error
	for attempt := 1; attempt <= e.policy.Attempts; attempt++ {
		records, err := e.once(ctx, query, args)
		if err == nil {
			e.metrics.ObserveQuery("ok")
			return records, nil
		}

		var te *models.TransientStoreError
		if !errors.As(err, &te) {
			e.metrics.ObserveQuery("query_error")
			return nil, err
		}
		e.metrics.ObserveQuery("transient")
		lastErr = te.Err
		e.release()

		if attempt < e.policy.Attempts {
			e.logger.Error("database connection error, will retry",
				zap.Error(te.Err),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", e.policy.Attempts),
				zap.Duration("delay", e.policy.Delay),
			)
			e.metrics.ObserveRetry()
			e.sleep(e.policy.Delay)
		}
	}

	return nil, &models.TransientStoreError{Attempts: e.policy.Attempts, Err: lastErr}
}

func (e *Executor) once(ctx context.Context, query string, args []any) ([]models.Record, error) {
	if e.policy.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.policy.QueryTimeout)
		defer cancel()
	}

	if e.conn == nil {
		conn, err := e.pool.Conn(ctx)
		if err != nil {
			return nil, Classify(err, "")
		}
		e.conn = conn
	}
	return e.conn.Query(ctx, query, args...)
}

// release drops the current connection so the next attempt acquires a
// fresh one.
func (e *Executor) release() {
	if e.conn == nil {
		return
	}
	if err := e.conn.Close(); err != nil {
		e.logger.Debug("closing broken connection", zap.Error(err))
	}
	e.conn = nil
}

// Close releases the held connection, if any.
func (e *Executor) Close() error {
	if e.conn == nil {
		return nil
	}
	err := e.conn.Close()
	e.conn = nil
	return err
}
