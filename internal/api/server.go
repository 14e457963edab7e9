// Package api provides the HTTP surface of the scorecard service.
package api

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fidde/scorecard/internal/metrics"
	"github.com/fidde/scorecard/pkg/models"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "ortelius-ms-scorecard"

// ReportBuilder builds one report grid per request.
type ReportBuilder interface {
	Build(ctx context.Context, req models.ReportRequest) (*models.Grid, error)
}

// Pinger probes the store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures a Server.
type Options struct {
	Addr           string
	RequestTimeout time.Duration
	// Reports is served under /reports/. Nil disables the route.
	Reports  fs.FS
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// Server is the REST API server.
type Server struct {
	reports ReportBuilder
	store   Pinger
	logger  *zap.Logger
	metrics *metrics.Metrics
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new API server.
func NewServer(reports ReportBuilder, store Pinger, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	s := &Server{
		reports: reports,
		store:   store,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		router:  chi.NewRouter(),
	}

	// Middleware
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.countRequests)
	s.router.Use(middleware.Timeout(opts.RequestTimeout))

	s.router.Get("/health", s.HandleHealth)
	s.router.Get("/msapi/scorecard", s.getScorecard)

	if opts.Gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	if opts.Reports != nil {
		files := http.StripPrefix("/reports", http.FileServer(http.FS(opts.Reports)))
		s.router.Get("/reports", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/reports/", http.StatusMovedPermanently)
		})
		s.router.Get("/reports/*", files.ServeHTTP)
	}

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// countRequests records one request per route pattern and status code.
func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveHTTP(route, strconv.Itoa(status))
	})
}

// respondJSON writes a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("writing response", zap.Error(err))
	}
}

// respondError writes an error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"detail": message,
	})
}
