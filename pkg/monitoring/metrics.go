package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	ledgerOperationsTotal   *prometheus.CounterVec
	ledgerOperationDuration *prometheus.HistogramVec

	mirrorLookupsTotal *prometheus.CounterVec
}

// NewMetricsCollector creates a collector with its own registry
func NewMetricsCollector(serviceName string) *MetricsCollector {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &MetricsCollector{
		registry: prometheus.NewRegistry(),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "gateway_http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: constLabels,
			},
			[]string{"method", "route", "status_code"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "gateway_http_request_duration_seconds",
				Help:        "Duration of HTTP requests in seconds",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
			[]string{"method", "route"},
		),

		// Receipts usually take a few seconds to reach consensus
		ledgerOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "gateway_ledger_operations_total",
				Help:        "Total number of ledger operations",
				ConstLabels: constLabels,
			},
			[]string{"operation", "outcome"},
		),

		ledgerOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "gateway_ledger_operation_duration_seconds",
				Help:        "Duration of ledger operations in seconds, submit through receipt",
				Buckets:     []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
				ConstLabels: constLabels,
			},
			[]string{"operation"},
		),

		mirrorLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "gateway_mirror_lookups_total",
				Help:        "Total number of mirror node lookups",
				ConstLabels: constLabels,
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.ledgerOperationsTotal,
		m.ledgerOperationDuration,
		m.mirrorLookupsTotal,
	)

	return m
}

// RecordHTTPRequest records HTTP request metrics
func (m *MetricsCollector) RecordHTTPRequest(method, route, statusCode string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordLedgerOperation records a ledger operation and its outcome
func (m *MetricsCollector) RecordLedgerOperation(operation string, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.ledgerOperationsTotal.WithLabelValues(operation, outcome).Inc()
	m.ledgerOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordMirrorLookup records a mirror lookup outcome
func (m *MetricsCollector) RecordMirrorLookup(outcome string) {
	m.mirrorLookupsTotal.WithLabelValues(outcome).Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
