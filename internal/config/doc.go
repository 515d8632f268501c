// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

/*
Package config provides centralized configuration management for HookSocket.

This package handles loading, validation, and parsing of configuration for
all application components. Configuration is layered with clear precedence:
built-in defaults, then an optional YAML file, then environment variables.

# Configuration Sources

The package reads configuration from:
  - Built-in defaults (lowest priority)
  - Optional YAML config file (config.yaml, config.yml, /etc/hooksocket/...)
  - Environment variables (highest priority)

The config file path can be overridden with CONFIG_PATH.

# Configuration Structure

The package organizes configuration into logical groups:

  - ServerConfig: HTTP server settings (host, port, timeout)
  - RelayConfig: path prefixes and room lifecycle tuning
  - ForwardConfig: webhook forward target and timeout
  - SuppressConfig: reply suppression rule
  - RateLimitConfig: per-IP rate limiting
  - LoggingConfig: log level, format, caller reporting

# Environment Variables

Relay paths (RelayConfig):
  - WS_PATH: WebSocket upgrade prefix (default: /websocket/)
  - WH_PATH: Webhook broadcast prefix (default: /webhook/)
  - API_PATH: Alias for WH_PATH
  - WS_PATH_TEST: Test-mode upgrade prefix (default: /websocket-test/)
  - API_PATH_TEST: Test-mode broadcast prefix (default: /webhook-test/)
  - KEEPALIVE_INTERVAL: WebSocket ping period (default: 30s)
  - ROOM_IDLE_TTL: Empty-room lifetime before pruning (default: 60s, 0 disables)

Forwarding (ForwardConfig):
  - WH_HOST: Forward target host override (default: inbound request host)
  - API_HOST: Alias for WH_HOST
  - FORWARD_TIMEOUT: Outbound POST timeout (default: 30s)

Suppression (SuppressConfig):
  - SUPPRESS_FIELD: JSON field checked in replies (default: message)
  - SUPPRESS_VALUES: Comma-separated sentinel values
    (default: "Workflow was started")

HTTP Server (ServerConfig):
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8080)
  - HTTP_TIMEOUT: Read/write timeout (default: 30s)

Rate Limiting (RateLimitConfig):
  - RATE_LIMIT_REQUESTS: Requests per window per IP (default: 100)
  - RATE_LIMIT_WINDOW: Window duration (default: 1m)
  - DISABLE_RATE_LIMIT: Disable limiting entirely (default: false)

Logging (LoggingConfig):
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include caller file:line (default: false)

# Usage Example

Basic configuration loading:

	import "github.com/adshrc/HookSocket/internal/config"

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Listening on %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Socket prefix: %s\n", cfg.Relay.SocketPath)

Testing with custom configuration:

	os.Setenv("HTTP_PORT", "8080")
	os.Setenv("WS_PATH", "/ws/")
	os.Setenv("WH_PATH", "/hooks/")

	cfg, err := config.LoadWithKoanf()
	// Use cfg for testing

# Validation

The package performs validation in two passes: struct tags (via
internal/validation) for per-field constraints, then manual cross-field
checks whose error messages name the offending environment variable:

  - Required fields: all four path prefixes, each starting with /
  - Distinctness: WS_PATH != WH_PATH, WS_PATH_TEST != API_PATH_TEST
  - Numeric ranges: HTTP_PORT (1-65535)
  - Duration floors: HTTP_TIMEOUT, KEEPALIVE_INTERVAL, FORWARD_TIMEOUT >= 1s
  - URL format: WH_HOST must be a bare host or http(s) host with no path

# Thread Safety

The Config struct is immutable after LoadWithKoanf() returns, making it safe
for concurrent access from multiple goroutines without synchronization.
*/
package config
