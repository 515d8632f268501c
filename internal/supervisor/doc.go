// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

/*
Package supervisor provides process supervision for HookSocket using suture v4.

This package implements a supervisor tree that manages the lifecycle of the
relay's long-running components. It provides Erlang/OTP-style supervision
with automatic restart, failure isolation, and graceful shutdown.

# Overview

The tree organizes services into two layers for failure isolation:

	RootSupervisor ("hooksocket")
	├── RelaySupervisor ("relay-layer")
	│   └── RelayManagerService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

This hierarchy ensures that:
  - An HTTP listener failure restarts the server without closing rooms
  - Relay layer failures don't take the health and metrics endpoints down
  - Each layer has independent failure counting and backoff

# Key Features

Automatic Restart:
  - Crashed services are automatically restarted
  - Exponential backoff prevents restart storms
  - Configurable failure thresholds and decay rates

Graceful Shutdown:
  - Context cancellation triggers orderly shutdown
  - Configurable shutdown timeout per service
  - UnstoppedServiceReport for debugging hangs

Structured Logging:
  - Supervisor events flow through sutureslog into the application's
    zerolog pipeline via the logging package's slog adapter
  - Logs service starts, stops, failures, and restarts

# Usage Example

Basic setup in main.go:

	slogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogger, supervisor.DefaultTreeConfig())
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddRelayService(services.NewRelayManagerService(manager))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)
	if err := <-errCh; err != nil {
	    logging.Error().Err(err).Msg("Supervisor stopped")
	}

# Configuration

The TreeConfig controls restart behavior:

	config := supervisor.TreeConfig{
	    FailureThreshold: 5.0,              // Failures before backoff
	    FailureDecay:     30.0,             // Seconds for failures to decay
	    FailureBackoff:   15 * time.Second, // Backoff duration
	    ShutdownTimeout:  10 * time.Second, // Per-service shutdown timeout
	}

Default values match suture's production defaults.

# Service Interface

All services must implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return behavior:
  - Return nil: Service stopped cleanly, will not be restarted
  - Return error: Service crashed, will be restarted
  - Context canceled: Shutdown requested, return promptly

# What Is NOT Supervised

Rooms are not individual suture services. The relay manager owns room
lifecycle (creation on demand, idle pruning, shutdown), and a room's run
loop is a plain goroutine whose context the manager controls. Putting
thousands of short-lived caller-named rooms under suture would turn the
supervisor into a second room table.

The circuit breaker around webhook forwards is likewise internal to the
relay package; a tripped breaker is backpressure, not a crash.

# See Also

  - internal/supervisor/services: Service wrappers
  - github.com/thejerf/suture/v4: Underlying library
*/
package supervisor
