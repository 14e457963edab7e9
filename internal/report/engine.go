// Package report builds scorecard grids: it resolves the environment order
// and domain scope, fetches long-format facts through the retrying
// executor and reshapes them into the frequency, lag or matrix grid.
package report

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fidde/scorecard/internal/metrics"
	"github.com/fidde/scorecard/internal/pivot"
	"github.com/fidde/scorecard/internal/storage"
	"github.com/fidde/scorecard/pkg/models"
)

// Options configures an Engine.
type Options struct {
	// Schema qualifies store tables, e.g. "dm". Empty means unqualified.
	Schema  string
	Retry   storage.RetryPolicy
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Engine builds report grids. It holds only read-only configuration and
// the pool handle; every Build call is independent.
type Engine struct {
	pool    storage.Pool
	queries Queries
	retry   storage.RetryPolicy
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewEngine creates an engine reading from pool.
func NewEngine(pool storage.Pool, opts Options) (*Engine, error) {
	q, err := NewQueries(opts.Schema)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Retry.Attempts == 0 {
		opts.Retry = storage.DefaultRetryPolicy()
	}
	return &Engine{
		pool:    pool,
		queries: q,
		retry:   opts.Retry,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}, nil
}

// Build runs the full pipeline for req on one store connection. It either
// returns a complete grid or an error; partial grids are never returned.
func (e *Engine) Build(ctx context.Context, req models.ReportRequest) (*models.Grid, error) {
	start := time.Now()
	shape := string(req.Shape)
	if shape == "" {
		shape = string(models.ShapeMatrix)
	}

	exec := storage.NewExecutor(e.pool, e.retry, e.logger, e.metrics)
	defer func() {
		if err := exec.Close(); err != nil {
			e.logger.Warn("releasing store connection", zap.Error(err))
		}
	}()

	grid, err := e.build(ctx, exec, req)
	if err != nil {
		e.metrics.ObserveReportError(shape, errorClass(err))
		e.logger.Error("report build failed", zap.String("shape", shape), zap.Error(err))
		return nil, err
	}

	e.metrics.ObserveReport(shape, time.Since(start), len(grid.Data))
	e.logger.Debug("report built",
		zap.String("shape", shape),
		zap.Int("columns", len(grid.Columns)),
		zap.Int("rows", len(grid.Data)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return grid, nil
}

func (e *Engine) build(ctx context.Context, exec Executor, req models.ReportRequest) (*models.Grid, error) {
	envOrder, err := LoadEnvironmentOrder(ctx, exec, e.queries)
	if err != nil {
		return nil, err
	}

	scope, domain, err := ResolveScope(ctx, exec, e.queries, req.DomainID)
	if err != nil {
		return nil, err
	}
	if scope.Empty() {
		e.logger.Debug("domain scope is empty", zap.Int64("domain", *req.DomainID))
		return models.EmptyGrid(domain), nil
	}
	filter := Filter{Scope: scope, AppID: req.AppID, AppName: req.AppName}

	fetch := func(query string, args []any) ([]models.Record, error) {
		return exec.Execute(ctx, query, args...)
	}

	var (
		frame *pivot.Frame
		skip  int
	)
	switch req.Shape {
	case models.ShapeFrequency:
		records, err := fetch(e.queries.Frequency(filter))
		if err != nil {
			return nil, err
		}
		if frame, err = BuildFrequency(records, envOrder, req.Bucket); err != nil {
			return nil, err
		}

	case models.ShapeLag:
		records, err := fetch(e.queries.Lag(filter))
		if err != nil {
			return nil, err
		}
		if frame, err = BuildLag(records, envOrder, req.LagMode); err != nil {
			return nil, err
		}

	default:
		deployments, err := fetch(e.queries.MatrixEnvironments(filter))
		if err != nil {
			return nil, err
		}
		facts, err := fetch(e.queries.MatrixFacts(filter))
		if err != nil {
			return nil, err
		}
		if frame, err = BuildMatrix(facts, deployments, envOrder); err != nil {
			return nil, err
		}
		skip = matrixHidden
	}

	return Serialize(domain, frame, skip)
}

func errorClass(err error) string {
	var (
		te *models.TransientStoreError
		qe *models.QueryError
		se *models.ShapeMismatchError
	)
	switch {
	case errors.As(err, &te):
		return "transient"
	case errors.As(err, &qe):
		return "query"
	case errors.As(err, &se):
		return "shape"
	default:
		return "other"
	}
}
