// Package metrics holds the prometheus collectors of the scorecard service.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "scorecard"

// Metrics groups the service collectors.
type Metrics struct {
	queries        *prometheus.CounterVec
	retries        prometheus.Counter
	reportDuration *prometheus.HistogramVec
	reportRows     *prometheus.HistogramVec
	reportErrors   *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "query_attempts_total",
			Help:      "Store query attempts by outcome (ok, transient, query_error).",
		}, []string{"outcome"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "query_retries_total",
			Help:      "Store queries retried after a transient fault.",
		}),
		reportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "duration_seconds",
			Help:      "Time to build a report grid, store round-trips included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"shape"}),
		reportRows: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "rows",
			Help:      "Rows in emitted report grids.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"shape"}),
		reportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "errors_total",
			Help:      "Failed report builds by error class.",
		}, []string{"shape", "class"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}

	if reg != nil {
		reg.MustRegister(m.queries, m.retries, m.reportDuration, m.reportRows, m.reportErrors, m.httpRequests)
	}
	return m
}

// ObserveQuery counts one query attempt.
func (m *Metrics) ObserveQuery(outcome string) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(outcome).Inc()
}

// ObserveRetry counts one retry.
func (m *Metrics) ObserveRetry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

// ObserveReport records a successful report build.
func (m *Metrics) ObserveReport(shape string, elapsed time.Duration, rows int) {
	if m == nil {
		return
	}
	m.reportDuration.WithLabelValues(shape).Observe(elapsed.Seconds())
	m.reportRows.WithLabelValues(shape).Observe(float64(rows))
}

// ObserveReportError counts a failed report build.
func (m *Metrics) ObserveReportError(shape, class string) {
	if m == nil {
		return
	}
	m.reportErrors.WithLabelValues(shape, class).Inc()
}

// ObserveHTTP counts one HTTP response.
func (m *Metrics) ObserveHTTP(route, code string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, code).Inc()
}
