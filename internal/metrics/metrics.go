// Package metrics provides Prometheus metrics for the issue tracker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics of the API process.
type Metrics struct {
	gatherer prometheus.Gatherer

	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Mutation metrics
	MutationsTotal      *prometheus.CounterVec
	HistoryAppendsTotal *prometheus.CounterVec
	ImportRowsTotal     *prometheus.CounterVec
}

// New creates the metrics and registers them with reg. The server passes a
// fresh prometheus.Registry; tests do the same to stay isolated.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{gatherer: reg}

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issuetracker_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "issuetracker_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.MutationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issuetracker_mutations_total",
			Help: "Mutating operations by outcome (accepted, noop, conflict, not_found, invalid, failed)",
		},
		[]string{"operation", "outcome"},
	)

	m.HistoryAppendsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issuetracker_history_rows_appended_total",
			Help: "Committed audit history rows by event type",
		},
		[]string{"event_type"},
	)

	m.ImportRowsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issuetracker_import_rows_total",
			Help: "CSV import rows by result (created, failed)",
		},
		[]string{"result"},
	)

	return m
}

// RecordHTTPRequest records a finished HTTP request. route is the mux pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// MutationCompleted implements service.Observer.
func (m *Metrics) MutationCompleted(op, outcome string) {
	m.MutationsTotal.WithLabelValues(op, outcome).Inc()
}

// HistoryAppended implements service.Observer.
func (m *Metrics) HistoryAppended(eventType string, n int) {
	if n > 0 {
		m.HistoryAppendsTotal.WithLabelValues(eventType).Add(float64(n))
	}
}

// ImportFinished records the row counts of one import.
func (m *Metrics) ImportFinished(created, failed int) {
	m.ImportRowsTotal.WithLabelValues("created").Add(float64(created))
	m.ImportRowsTotal.WithLabelValues("failed").Add(float64(failed))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
