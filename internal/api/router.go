// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adshrc/HookSocket/internal/config"
	"github.com/adshrc/HookSocket/internal/middleware"
)

// Router wires the relay's HTTP surface onto a Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for the given handler with middleware built
// from the application configuration.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddlewareFromConfig(cfg),
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler, so the middleware package works with
// Chi's r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// instrumented wraps a route group with Prometheus request metrics under
// a fixed endpoint label. Room keys are caller-chosen paths; labeling by
// raw path would mint a metric series per room.
func instrumented(endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return middleware.PrometheusMetrics(endpoint, next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	// Applied to ALL routes in order
	r.Use(chiMiddleware(middleware.RequestID)) // X-Request-ID header with logging context
	r.Use(chimiddleware.RealIP)                // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)             // Recover from panics
	r.Use(router.chiMiddleware.CORS())         // CORS must be global to handle OPTIONS preflight

	// ========================
	// Health Endpoint
	// ========================
	// Permissive rate limiting (1000/min) for monitoring tools
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(instrumented("healthz"))
		r.HandleFunc("/healthz", router.handler.Health)
	})

	// ========================
	// Prometheus Metrics
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Relay Catch-All
	// ========================
	// Every path not claimed above belongs to the relay's URL space;
	// Chi's static routes win over the wildcard. Compression detects
	// WebSocket upgrades and steps aside for them.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiMiddleware(middleware.Compression))
		r.Use(instrumented("relay"))
		r.HandleFunc("/*", router.handler.Relay)
	})

	return r
}
