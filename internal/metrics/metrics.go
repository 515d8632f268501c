// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package metrics

import (
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - WebSocket connections and rooms
// - Message relay (forwards, broadcasts, deliveries, suppressions)
// - Outbound webhook calls and their circuit breaker
// - API endpoint latency and throughput

var (
	// Connection / Room Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	Rooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_rooms",
			Help: "Current number of live rooms",
		},
	)

	ConnectionsAdmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_connections_admitted_total",
			Help: "Total number of WebSocket connections admitted to rooms",
		},
	)

	ConnectionsEvicted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_connections_evicted_total",
			Help: "Total number of connections removed from rooms",
		},
		[]string{"reason"}, // "closed", "send_failed", "keepalive", "shutdown"
	)

	// Message Metrics
	MessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_messages_received_total",
			Help: "Total number of client messages read from WebSocket connections",
		},
	)

	Broadcasts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_broadcasts_total",
			Help: "Total number of broadcast operations",
		},
		[]string{"source"}, // "external", "reply"
	)

	MessagesDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_messages_delivered_total",
			Help: "Total number of messages delivered to individual connections",
		},
	)

	MessagesSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_messages_suppressed_total",
			Help: "Total number of payloads matching the acknowledgment sentinel and skipped",
		},
	)

	// Forward Metrics
	Forwards = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_forwards_total",
			Help: "Total number of outbound webhook forwards attempted",
		},
	)

	ForwardErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_forward_errors_total",
			Help: "Total number of failed outbound webhook forwards",
		},
		[]string{"error_type"}, // "transport", "breaker_open", "encode"
	)

	ForwardDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_forward_duration_seconds",
			Help:    "Duration of outbound webhook forwards in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric.
// The endpoint label must be a bounded route pattern, never a raw request
// path: the relay surface accepts arbitrary room identifiers and raw paths
// would explode label cardinality.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordForward records an outbound webhook forward and its outcome.
// errorType is one of "transport", "breaker_open", "encode"; ignored when
// err is nil.
func RecordForward(duration time.Duration, err error, errorType string) {
	Forwards.Inc()
	ForwardDuration.Observe(duration.Seconds())
	if err != nil {
		if errorType == "" {
			errorType = "transport"
		}
		ForwardErrors.WithLabelValues(errorType).Inc()
	}
}

// RecordBroadcast records one broadcast operation and its delivery counts.
// Evicted connections left the registry during this broadcast, so the
// connection gauge drops with them.
func RecordBroadcast(source string, delivered, evicted int) {
	Broadcasts.WithLabelValues(source).Inc()
	MessagesDelivered.Add(float64(delivered))
	if evicted > 0 {
		ConnectionsEvicted.WithLabelValues("send_failed").Add(float64(evicted))
		WSConnections.Sub(float64(evicted))
	}
}

// RecordAdmission records a connection joining a room.
func RecordAdmission() {
	ConnectionsAdmitted.Inc()
	WSConnections.Inc()
}

// RecordEviction records a connection leaving a room for the given reason.
func RecordEviction(reason string) {
	ConnectionsEvicted.WithLabelValues(reason).Inc()
	WSConnections.Dec()
}

// SetRooms updates the live-room gauge.
func SetRooms(n int) {
	Rooms.Set(float64(n))
}

// InitAppInfo publishes static build information and should be called once
// at startup.
func InitAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// UpdateUptime sets the uptime gauge from the process start time.
func UpdateUptime(start time.Time) {
	AppUptime.Set(time.Since(start).Seconds())
}

// StatusCodeLabel converts a numeric HTTP status to its metric label.
func StatusCodeLabel(code int) string {
	return strconv.Itoa(code)
}
