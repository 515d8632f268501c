// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

// Package logging provides centralized zerolog-based structured logging for HookSocket.
//
// The package wraps a single global zerolog logger configured once at startup,
// emitting JSON for production and human-readable console output during
// development.
//
// # Quick Start
//
//	import "github.com/adshrc/HookSocket/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	// Log messages with structured fields
//	logging.Info().Str("room", key).Msg("Room created")
//	logging.Error().Err(err).Str("target", url).Msg("Forward failed")
//
//	// Context-aware logging (request_id / correlation_id from middleware)
//	logging.Ctx(ctx).Info().Msg("Broadcast accepted")
//
// # Configuration
//
// Environment Variables (mapped by internal/config):
//
//	LOG_LEVEL   - Minimum log level: trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - Output format: json, console (default: json)
//	LOG_CALLER  - Include caller file:line: true, false (default: false)
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// Use structured fields instead of string formatting:
//
//	logging.Info().Str("room", key).Int("connections", n).Msg("broadcast done")
//
// # slog Adapter
//
// Libraries that require a *slog.Logger (the suture supervisor via sutureslog)
// are bridged with NewSlogLogger, which routes slog records into zerolog:
//
//	slogger := logging.NewSlogLogger()
//	hook := (&sutureslog.Handler{Logger: slogger}).MustHook()
//
// # Thread Safety
//
// All exported functions are safe for concurrent use. The global logger is
// protected by a sync.RWMutex for configuration changes.
//
// # Testing
//
// Create test loggers that capture output:
//
//	var buf bytes.Buffer
//	logger := logging.NewTestLogger(&buf)
//	logger.Info().Msg("test message")
//	output := buf.String()
package logging
