// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package config

import (
	"time"
)

// Config holds all application configuration, loaded from defaults,
// an optional YAML file, and environment variables (in that order of
// precedence, lowest to highest).
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Relay     RelayConfig     `koanf:"relay"`
	Forward   ForwardConfig   `koanf:"forward"`
	Suppress  SuppressConfig  `koanf:"suppress"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int           `koanf:"port" validate:"gte=1,lte=65535"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// RelayConfig holds the path prefixes that partition the URL space into
// socket-side (WebSocket upgrade) and webhook-side (broadcast POST)
// endpoints, plus room lifecycle tuning.
//
// Each prefix pair maps a webhook path to its socket counterpart: a POST
// to {WebhookPath}<id> is broadcast to clients connected via
// {SocketPath}<id>. The test pair serves the same purpose for
// trial/editor traffic and is matched before the default pair.
type RelayConfig struct {
	SocketPath      string `koanf:"socket_path" validate:"required,startswith=/"`
	WebhookPath     string `koanf:"webhook_path" validate:"required,startswith=/"`
	SocketPathTest  string `koanf:"socket_path_test" validate:"required,startswith=/"`
	WebhookPathTest string `koanf:"webhook_path_test" validate:"required,startswith=/"`

	// KeepaliveInterval is the WebSocket ping period. Clients that miss
	// two consecutive intervals without a pong are evicted.
	KeepaliveInterval time.Duration `koanf:"keepalive_interval"`

	// RoomIdleTTL controls how long an empty room survives before the
	// manager prunes it. Zero disables pruning.
	RoomIdleTTL time.Duration `koanf:"room_idle_ttl"`
}

// ForwardConfig holds settings for relaying client messages to the
// webhook backend.
type ForwardConfig struct {
	// Host overrides the forward target host. When empty, forwards go
	// back to the host the inbound request arrived on. A bare host
	// (no scheme) is assumed to be https.
	Host string `koanf:"host"`

	// Timeout bounds each outbound webhook POST.
	Timeout time.Duration `koanf:"timeout"`
}

// SuppressConfig defines the reply suppression rule: a broadcast whose
// JSON body is an object carrying Field with one of Values is dropped
// instead of delivered. This keeps workflow-engine acknowledgements
// (e.g. "Workflow was started") from echoing to connected clients.
type SuppressConfig struct {
	Field  string   `koanf:"field"`
	Values []string `koanf:"values"`
}

// RateLimitConfig holds HTTP rate limiting settings applied per client IP.
// Bounds are checked manually because they only apply while enabled.
type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Disabled bool          `koanf:"disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// validLogLevels enumerates accepted LOG_LEVEL values.
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats enumerates accepted LOG_FORMAT values.
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}
