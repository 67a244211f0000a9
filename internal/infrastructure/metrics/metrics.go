// Package metrics provides Prometheus metrics for logbot
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bnrubin/discord-logbot/internal/domain"
	"github.com/bnrubin/discord-logbot/internal/ports"
)

// Metrics holds all Prometheus metrics for logbot. Each instance owns its registry.
type Metrics struct {
	registry *prometheus.Registry

	// Lifecycle metrics
	EventsTotal *prometheus.CounterVec

	// Image metrics
	FetchesTotal  *prometheus.CounterVec
	FetchDuration prometheus.Histogram

	// Store metrics
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestsLimited prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.EventsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logbot_edit_events_total",
			Help: "Total number of message edit events by classification",
		},
		[]string{"classification", "status"},
	)

	m.FetchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logbot_image_fetches_total",
			Help: "Total number of image downloads",
		},
		[]string{"status"},
	)

	m.FetchDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "logbot_image_fetch_duration_seconds",
			Help:    "Duration of image downloads in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	m.StoreOperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logbot_store_operations_total",
			Help: "Total number of record store operations",
		},
		[]string{"operation", "status"},
	)

	m.StoreOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "logbot_store_operation_duration_seconds",
			Help:    "Duration of record store operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logbot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "code"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "logbot_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	m.HTTPRequestsLimited = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "logbot_http_requests_limited_total",
			Help: "Total number of HTTP requests rejected by the rate limiter",
		},
	)

	return m
}

// RecordEvent implements ports.Metrics.
func (m *Metrics) RecordEvent(classification domain.Classification, status string) {
	m.EventsTotal.WithLabelValues(string(classification), status).Inc()
}

// RecordFetch implements ports.Metrics.
func (m *Metrics) RecordFetch(status string, duration time.Duration) {
	m.FetchesTotal.WithLabelValues(status).Inc()
	m.FetchDuration.Observe(duration.Seconds())
}

// RecordStoreOperation implements ports.Metrics.
func (m *Metrics) RecordStoreOperation(operation, status string, duration time.Duration) {
	m.StoreOperationsTotal.WithLabelValues(operation, status).Inc()
	m.StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records a served request
func (m *Metrics) RecordHTTPRequest(route, method string, code int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordRateLimited counts a rejected request
func (m *Metrics) RecordRateLimited() {
	m.HTTPRequestsLimited.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ ports.Metrics = (*Metrics)(nil)
