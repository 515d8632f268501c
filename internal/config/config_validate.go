// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/adshrc/HookSocket/internal/validation"
)

// Validate checks that required configuration is present and valid.
// Struct tags cover per-field constraints; the manual checks below cover
// cross-field and conditional rules, with error messages that name the
// environment variable controlling the offending setting.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("invalid configuration: %w", verr)
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateRelay(); err != nil {
		return err
	}

	if err := c.validateForward(); err != nil {
		return err
	}

	if err := c.validateSuppress(); err != nil {
		return err
	}

	if err := c.validateRateLimit(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Timeout < time.Second {
		return fmt.Errorf("HTTP_TIMEOUT must be at least 1s")
	}
	return nil
}

// pathPrefixVar pairs a relay prefix with the environment variable that
// configures it, for error messages.
type pathPrefixVar struct {
	envVar string
	value  func(*Config) string
}

var pathPrefixVars = []pathPrefixVar{
	{"WS_PATH", func(c *Config) string { return c.Relay.SocketPath }},
	{"WH_PATH", func(c *Config) string { return c.Relay.WebhookPath }},
	{"WS_PATH_TEST", func(c *Config) string { return c.Relay.SocketPathTest }},
	{"API_PATH_TEST", func(c *Config) string { return c.Relay.WebhookPathTest }},
}

// validateRelay validates the path prefixes and room lifecycle settings
func (c *Config) validateRelay() error {
	for _, p := range pathPrefixVars {
		if err := validatePathPrefix(p.value(c), p.envVar); err != nil {
			return err
		}
	}

	// A socket prefix that equals a webhook prefix would make every
	// room path ambiguous between upgrade and broadcast address spaces.
	if c.Relay.SocketPath == c.Relay.WebhookPath {
		return fmt.Errorf("WS_PATH and WH_PATH must differ")
	}
	if c.Relay.SocketPathTest == c.Relay.WebhookPathTest {
		return fmt.Errorf("WS_PATH_TEST and API_PATH_TEST must differ")
	}

	if c.Relay.KeepaliveInterval < time.Second {
		return fmt.Errorf("KEEPALIVE_INTERVAL must be at least 1s")
	}
	if c.Relay.RoomIdleTTL < 0 {
		return fmt.Errorf("ROOM_IDLE_TTL must not be negative (0 disables pruning)")
	}
	return nil
}

// validatePathPrefix checks that a relay prefix is usable as a URL path
// prefix. Presence and the leading slash are covered by struct tags; this
// catches characters that would change meaning inside a request path.
func validatePathPrefix(prefix, envVar string) error {
	if strings.ContainsAny(prefix, " ?#") {
		return fmt.Errorf("%s must not contain spaces or query/fragment characters: %s", envVar, prefix)
	}
	return nil
}

// validateForward validates the forward target configuration
func (c *Config) validateForward() error {
	if c.Forward.Timeout < time.Second {
		return fmt.Errorf("FORWARD_TIMEOUT must be at least 1s")
	}
	if c.Forward.Host == "" {
		return nil // Empty = forward back to the inbound request's host
	}
	return validateForwardHost(c.Forward.Host)
}

// validateForwardHost accepts either a bare host ("backend.internal:8443")
// or a host with an explicit http/https scheme. Paths and query strings are
// rejected: the translated room path is appended at forward time.
func validateForwardHost(host string) error {
	raw := host
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("WH_HOST failed to parse: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("WH_HOST scheme must be http or https, got: %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("WH_HOST host is required")
	}
	if parsed.Path != "" && parsed.Path != "/" {
		return fmt.Errorf("WH_HOST should be host only, remove path: %s", parsed.Path)
	}
	if parsed.RawQuery != "" {
		return fmt.Errorf("WH_HOST should not contain query parameters, remove: ?%s", parsed.RawQuery)
	}
	return nil
}

// validateSuppress validates the reply suppression rule
func (c *Config) validateSuppress() error {
	// An empty field disables suppression entirely, which is a valid
	// (if unusual) configuration. Values without a field is a mistake.
	if c.Suppress.Field == "" && len(c.Suppress.Values) > 0 {
		return fmt.Errorf("SUPPRESS_FIELD is required when SUPPRESS_VALUES is set")
	}
	return nil
}

// validateRateLimit validates rate limiting bounds (skipped when disabled)
func (c *Config) validateRateLimit() error {
	if c.RateLimit.Disabled {
		return nil
	}
	if c.RateLimit.Requests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.RateLimit.Window < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
