// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

// Package main is the entry point for the HookSocket relay server.
//
// HookSocket bridges WebSocket clients and webhook backends such as n8n:
// clients connect to /websocket/<id>, their frames are POSTed to the
// matching /webhook/<id> endpoint, and webhook calls back into
// /websocket/<id> are broadcast to every client in that room.
//
// # Application Architecture
//
// The server runs under Suture v4 process supervision:
//
//	RootSupervisor ("hooksocket")
//	├── RelaySupervisor ("relay-layer")
//	│   └── Room Manager (rooms, idle pruning, shutdown)
//	└── APISupervisor ("api-layer")
//	    └── HTTP Server (upgrade, broadcast, health, metrics)
//
// Component initialization order:
//
//  1. Configuration: Koanf v2 with environment variables and config files
//  2. Logging: zerolog with JSON/console output modes
//  3. Relay: path translator, webhook forwarder, room manager
//  4. Router: Chi with CORS, rate limiting, compression, request IDs
//  5. Supervisor Tree: Suture v4 process supervision
//  6. HTTP Server: single catch-all relay endpoint plus /healthz and /metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, then an optional config.yaml,
// then built-in defaults. CONFIG_PATH overrides the config file location.
//
// Commonly used variables:
//   - HTTP_PORT, HTTP_HOST, HTTP_TIMEOUT: listener settings (default :8080)
//   - WS_PATH, WH_PATH: socket and webhook prefixes (/websocket/, /webhook/)
//   - WS_PATH_TEST, API_PATH_TEST: test-mode prefix pair
//   - WH_HOST: forward target override; empty forwards back to the
//     host the WebSocket connection arrived on
//   - SUPPRESS_FIELD, SUPPRESS_VALUES: broadcast suppression rule
//   - KEEPALIVE_INTERVAL, ROOM_IDLE_TTL: room lifecycle tuning
//   - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
//   - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight webhook requests to complete (10s timeout)
//   - Closes every room and its WebSocket connections
//
// # Example Usage
//
// Relay to a local n8n instance:
//
//	export WH_HOST=http://localhost:5678
//	./hooksocket
//
// Same-host mode behind a reverse proxy (forwards to the inbound host):
//
//	./hooksocket
//
// Docker:
//
//	docker run -d \
//	  -e WH_HOST=http://n8n:5678 \
//	  -p 8080:8080 \
//	  ghcr.io/adshrc/hooksocket
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adshrc/HookSocket/internal/api"
	"github.com/adshrc/HookSocket/internal/config"
	"github.com/adshrc/HookSocket/internal/logging"
	"github.com/adshrc/HookSocket/internal/metrics"
	"github.com/adshrc/HookSocket/internal/relay"
	"github.com/adshrc/HookSocket/internal/supervisor"
	"github.com/adshrc/HookSocket/internal/supervisor/services"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", version).Msg("Starting HookSocket with supervisor tree")

	// Log configuration status - show the forward mode explicitly
	if cfg.Forward.Host != "" {
		logging.Info().
			Str("socket_path", cfg.Relay.SocketPath).
			Str("webhook_path", cfg.Relay.WebhookPath).
			Str("forward_host", cfg.Forward.Host).
			Msg("Configuration loaded")
	} else {
		logging.Info().
			Str("socket_path", cfg.Relay.SocketPath).
			Str("webhook_path", cfg.Relay.WebhookPath).
			Msg("Configuration loaded (forwarding to the inbound request host)")
	}
	if cfg.RateLimit.Disabled {
		logging.Warn().Msg("Rate limiting is DISABLED")
	}

	metrics.InitAppInfo(version)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Relay core: translator, forwarder, room manager
	translator := relay.NewTranslator(
		relay.PrefixPair{Socket: cfg.Relay.SocketPath, Webhook: cfg.Relay.WebhookPath},
		relay.PrefixPair{Socket: cfg.Relay.SocketPathTest, Webhook: cfg.Relay.WebhookPathTest},
	)
	forwarder := relay.NewForwarder(relay.ForwarderOptions{
		Host:    cfg.Forward.Host,
		Timeout: cfg.Forward.Timeout,
	})
	rule := relay.SuppressionRule{
		Field:  cfg.Suppress.Field,
		Values: cfg.Suppress.Values,
	}
	manager := relay.NewManager(relay.ManagerOptions{
		Translator: translator,
		Forwarder:  forwarder,
		Rule:       rule,
		Keepalive:  cfg.Relay.KeepaliveInterval,
		IdleTTL:    cfg.Relay.RoomIdleTTL,
	})

	handler := api.NewHandler(manager, rule, version)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Relay layer services
	tree.AddRelayService(services.NewRelayManagerService(manager))
	logging.Info().
		Dur("keepalive", cfg.Relay.KeepaliveInterval).
		Dur("idle_ttl", cfg.Relay.RoomIdleTTL).
		Msg("Room manager added to supervisor tree")

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
