// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

/*
Package middleware provides HTTP middleware for the relay's inbound surface.

This package implements infrastructure middleware for request ID tracking,
Prometheus metrics instrumentation, and gzip compression. The components are
written as http.HandlerFunc wrappers so they compose directly or through the
chi adapter in internal/api.

Key Components:

  - Request ID: UUID-based request tracking for distributed tracing
  - Prometheus Metrics: HTTP request/response instrumentation
  - Compression: gzip for JSON responses, skipped for WebSocket upgrades

Middleware Stack:

The relay route composes (outermost first):

	RequestID, RealIP, Recoverer, CORS, RateLimit, Compression,
	PrometheusMetrics, handler

RequestID through CORS are global; the rest are per route group.

WebSocket Upgrades:

The relay's catch-all route serves WebSocket upgrade requests alongside
ordinary JSON traffic, which shapes two components here:

  - Compression detects Upgrade: websocket and passes the handler the raw
    ResponseWriter; a gzip-wrapped writer cannot be hijacked.
  - The metrics ResponseWriter forwards Hijack and Flush to the underlying
    writer so gorilla/websocket can take over the connection through the
    instrumented handler.

Metric Cardinality:

PrometheusMetrics takes an explicit endpoint label ("relay", "healthz")
instead of using r.URL.Path. Relay paths embed caller-chosen room keys, so
labelling by raw path would let clients mint unbounded metric series.

Usage Example - Request ID:

	http.HandleFunc("/healthz",
	    middleware.RequestID(handler),
	)

	// Access request ID in handler
	func handler(w http.ResponseWriter, r *http.Request) {
	    requestID := middleware.GetRequestID(r.Context())
	    logging.Ctx(r.Context()).Info().Msg("processing request")
	}

Thread Safety:

All middleware components are thread-safe:
  - Compression pools gzip writers with sync.Pool
  - Request ID uses context.Context (immutable)
  - Prometheus metrics use atomic operations

See Also:

  - internal/api: routes wrapped by this middleware
  - internal/metrics: Prometheus metrics definitions
  - internal/logging: request/correlation ID context helpers
*/
package middleware
