// Package metrics defines Prometheus metrics for the Tally API.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tally_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_errors_total",
			Help: "Total error responses by status code",
		},
		[]string{"status"},
	)

	MutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_mutations_total",
			Help: "Committed entity mutations by entity and action",
		},
		[]string{"entity", "action"},
	)

	AuditWriteFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_audit_write_failures_total",
			Help: "Mutations whose audit entry could not be written",
		},
		[]string{"entity", "action"},
	)

	EventQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tally_event_queue_depth",
			Help: "Current change-event queue depth",
		},
	)

	EventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tally_events_dropped_total",
			Help: "Change events dropped because the queue was full",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tally_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)

	DBReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tally_db_reconnects_total",
			Help: "Database clients dialed after a failed liveness check",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		MutationsTotal, AuditWriteFailures,
		EventQueueDepth, EventsDropped, WSConnections,
		DBReconnects,
	)
}
