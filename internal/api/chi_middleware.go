// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

// Package api provides Chi middleware factories built on the
// production-hardened Chi ecosystem.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/adshrc/HookSocket/internal/config"
)

// ChiMiddlewareConfig holds configuration for Chi middleware factories.
type ChiMiddlewareConfig struct {
	// CORS configuration
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	CORSMaxAge         int // seconds

	// Rate limiting configuration
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
	RateLimitKeyFunc  httprate.KeyFunc
	RateLimitOnLimit  http.HandlerFunc
}

// DefaultChiMiddlewareConfig returns the relay's default middleware
// configuration. CORS is wide open: room paths are caller-chosen public
// endpoints and the relay carries no credentials, so any page or tool
// may talk to it.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"*"},
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type"},
		CORSMaxAge:         86400, // 24 hours

		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RateLimitDisabled: false,
	}
}

// ChiMiddleware provides Chi-compatible middleware factories.
// This uses production-hardened implementations from the Chi ecosystem.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware creates a new Chi middleware factory with the given
// configuration.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	if config == nil {
		config = DefaultChiMiddlewareConfig()
	}

	// OptionsPassthrough lets every OPTIONS request reach the relay's
	// catch-all handler, which answers 204 after the CORS headers are
	// set. Without it go-chi/cors terminates preflights itself with 200.
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:     config.CORSAllowedOrigins,
		AllowedMethods:     config.CORSAllowedMethods,
		AllowedHeaders:     config.CORSAllowedHeaders,
		MaxAge:             config.CORSMaxAge,
		OptionsPassthrough: true,
	})

	return &ChiMiddleware{
		config: config,
		cors:   corsHandler,
	}
}

// NewChiMiddlewareFromConfig builds the middleware factory from the
// application configuration. Only rate limiting is tunable; the CORS
// policy is fixed to the relay defaults. Rejected requests get the
// standard error envelope instead of httprate's plain-text reply.
func NewChiMiddlewareFromConfig(cfg *config.Config) *ChiMiddleware {
	mwConfig := DefaultChiMiddlewareConfig()
	mwConfig.RateLimitRequests = cfg.RateLimit.Requests
	mwConfig.RateLimitWindow = cfg.RateLimit.Window
	mwConfig.RateLimitDisabled = cfg.RateLimit.Disabled
	mwConfig.RateLimitOnLimit = func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests", nil)
	}
	return NewChiMiddleware(mwConfig)
}

// CORS returns a Chi-compatible CORS middleware using go-chi/cors.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns a Chi-compatible rate limiting middleware using
// go-chi/httprate.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		// Return a no-op middleware when rate limiting is disabled
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	// Use IP-based rate limiting by default, or custom key function if provided
	keyFunc := m.config.RateLimitKeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}

	opts := []httprate.Option{
		httprate.WithKeyFuncs(keyFunc),
	}

	if m.config.RateLimitOnLimit != nil {
		opts = append(opts, httprate.WithLimitHandler(m.config.RateLimitOnLimit))
	}

	return httprate.Limit(
		m.config.RateLimitRequests,
		m.config.RateLimitWindow,
		opts...,
	)
}

// RateLimitConfig defines rate limit parameters for specific endpoints.
type RateLimitConfig struct {
	// Requests is the number of requests allowed in the window
	Requests int
	// Window is the time window for rate limiting
	Window time.Duration
}

// RateLimitHealth is permissive rate limiting for the health endpoint
// (1000/min): enough for aggressive monitoring without opening an
// amplification surface.
var RateLimitHealth = RateLimitConfig{Requests: 1000, Window: time.Minute}

// RateLimitCustom returns a rate limiter with custom configuration.
func (m *ChiMiddleware) RateLimitCustom(config RateLimitConfig) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.LimitByIP(config.Requests, config.Window)
}

// RateLimitHealth returns a rate limiter for the health endpoint.
// Prevents abuse while allowing frequent monitoring checks.
func (m *ChiMiddleware) RateLimitHealth() func(http.Handler) http.Handler {
	return m.RateLimitCustom(RateLimitHealth)
}
