// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package config

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a fully valid config for mutation in tests
func validConfig() *Config {
	return defaultConfig()
}

func TestValidateRelayPaths(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "socket path equals webhook path",
			mutate:  func(c *Config) { c.Relay.SocketPath = "/same/"; c.Relay.WebhookPath = "/same/" },
			wantErr: "WS_PATH and WH_PATH must differ",
		},
		{
			name:    "test socket path equals test webhook path",
			mutate:  func(c *Config) { c.Relay.SocketPathTest = "/t/"; c.Relay.WebhookPathTest = "/t/" },
			wantErr: "WS_PATH_TEST and API_PATH_TEST must differ",
		},
		{
			name:    "prefix with space",
			mutate:  func(c *Config) { c.Relay.SocketPath = "/web socket/" },
			wantErr: "WS_PATH must not contain",
		},
		{
			name:    "prefix with query character",
			mutate:  func(c *Config) { c.Relay.WebhookPath = "/webhook?/" },
			wantErr: "WH_PATH must not contain",
		},
		{
			name:    "missing prefix",
			mutate:  func(c *Config) { c.Relay.SocketPath = "" },
			wantErr: "invalid configuration",
		},
		{
			name:    "prefix without leading slash",
			mutate:  func(c *Config) { c.Relay.WebhookPathTest = "webhook-test/" },
			wantErr: "invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should have failed")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateDurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "keepalive below floor",
			mutate:  func(c *Config) { c.Relay.KeepaliveInterval = 100 * time.Millisecond },
			wantErr: "KEEPALIVE_INTERVAL",
		},
		{
			name:    "negative room TTL",
			mutate:  func(c *Config) { c.Relay.RoomIdleTTL = -time.Second },
			wantErr: "ROOM_IDLE_TTL",
		},
		{
			name:    "forward timeout below floor",
			mutate:  func(c *Config) { c.Forward.Timeout = 0 },
			wantErr: "FORWARD_TIMEOUT",
		},
		{
			name:    "server timeout below floor",
			mutate:  func(c *Config) { c.Server.Timeout = 10 * time.Millisecond },
			wantErr: "HTTP_TIMEOUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should have failed")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateForwardHost(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		wantErr bool
	}{
		{"empty host is valid", "", false},
		{"bare host", "backend.internal", false},
		{"bare host with port", "backend.internal:8443", false},
		{"explicit https", "https://backend.internal", false},
		{"explicit http", "http://localhost:5678", false},
		{"trailing slash allowed", "https://backend.internal/", false},
		{"host with path", "https://backend.internal/webhook", true},
		{"host with query", "https://backend.internal?x=1", true},
		{"unsupported scheme", "ftp://backend.internal", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Forward.Host = tt.host
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("Validate() should reject host %q", tt.host)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() rejected valid host %q: %v", tt.host, err)
			}
		})
	}
}

func TestValidateSuppress(t *testing.T) {
	t.Run("values without field rejected", func(t *testing.T) {
		cfg := validConfig()
		cfg.Suppress.Field = ""
		cfg.Suppress.Values = []string{"Workflow was started"}
		if err := cfg.Validate(); err == nil {
			t.Fatal("Validate() should reject SUPPRESS_VALUES without SUPPRESS_FIELD")
		}
	})

	t.Run("empty rule disables suppression", func(t *testing.T) {
		cfg := validConfig()
		cfg.Suppress.Field = ""
		cfg.Suppress.Values = nil
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate() error = %v, want nil", err)
		}
	})
}

func TestValidateRateLimit(t *testing.T) {
	t.Run("zero requests rejected when enabled", func(t *testing.T) {
		cfg := validConfig()
		cfg.RateLimit.Requests = 0
		if err := cfg.Validate(); err == nil {
			t.Fatal("Validate() should reject RATE_LIMIT_REQUESTS=0")
		}
	})

	t.Run("bounds skipped when disabled", func(t *testing.T) {
		cfg := validConfig()
		cfg.RateLimit.Disabled = true
		cfg.RateLimit.Requests = 0
		cfg.RateLimit.Window = 0
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate() error = %v, want nil when rate limiting disabled", err)
		}
	})

	t.Run("sub-second window rejected", func(t *testing.T) {
		cfg := validConfig()
		cfg.RateLimit.Window = 100 * time.Millisecond
		if err := cfg.Validate(); err == nil {
			t.Fatal("Validate() should reject RATE_LIMIT_WINDOW below 1s")
		}
	})
}

func TestValidateLogging(t *testing.T) {
	t.Run("unknown level rejected", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logging.Level = "verbose"
		if err := cfg.Validate(); err == nil {
			t.Fatal("Validate() should reject unknown LOG_LEVEL")
		}
	})

	t.Run("unknown format rejected", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logging.Format = "logfmt"
		if err := cfg.Validate(); err == nil {
			t.Fatal("Validate() should reject unknown LOG_FORMAT")
		}
	})

	t.Run("empty format allowed", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logging.Format = ""
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate() error = %v, want nil for empty LOG_FORMAT", err)
		}
	})
}

func TestValidatePortBounds(t *testing.T) {
	tests := []struct {
		port    int
		wantErr bool
	}{
		{0, true},
		{1, false},
		{8080, false},
		{65535, false},
		{65536, true},
		{-1, true},
	}

	for _, tt := range tests {
		cfg := validConfig()
		cfg.Server.Port = tt.port
		err := cfg.Validate()
		if tt.wantErr && err == nil {
			t.Errorf("Validate() should reject port %d", tt.port)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("Validate() rejected valid port %d: %v", tt.port, err)
		}
	}
}
