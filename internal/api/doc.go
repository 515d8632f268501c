// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

/*
Package api provides the HTTP layer of the relay.

This package implements the catch-all relay endpoint that serves WebSocket
upgrades and external broadcasts for every room path, plus the health and
Prometheus metrics endpoints. It is the interface between connected clients,
webhook callers, and the room manager in internal/relay.

Key Components:

  - Router: Chi route configuration and middleware stack integration
  - Handler: the catch-all relay handler and the health endpoint
  - Response formatting: standardized JSON envelopes with metadata
  - Error handling: consistent error responses with appropriate HTTP status codes
  - Rate limiting: per-IP limits via go-chi/httprate
  - CORS: wildcard policy, usable from any page or tool

Request States:

Every request to a relay path resolves to exactly one of:

 1. Preflight (OPTIONS, any path): 204 with CORS headers
 2. Upgrade (GET with WebSocket handshake, socket path): 101, client joins the room
 3. Broadcast (POST, socket path): 200 with a JSON receipt
 4. Rejected (any other method on a socket path): 405
 5. Unknown (no socket prefix matches): 404

Room keys are full request paths. The webhook-side prefixes exist only as
forward targets; requests to them are state 5.

Usage Example:

	import (
	    "github.com/adshrc/HookSocket/internal/api"
	    "github.com/adshrc/HookSocket/internal/relay"
	)

	manager := relay.NewManager(relay.ManagerOptions{
	    Translator: translator,
	    Forwarder:  forwarder,
	    Rule:       rule,
	})
	handler := api.NewHandler(manager, rule, version)
	router := api.NewRouter(handler, cfg)

	http.ListenAndServe(":8080", router.SetupChi())

Thread Safety:

All handlers are thread-safe and designed for concurrent request handling.
The room manager serializes registry mutation internally; handlers never
hold locks across I/O.

See Also:

  - internal/relay: rooms, forwarding, and broadcast semantics
  - internal/middleware: request ID, metrics, and compression middleware
  - internal/models: response envelope and receipt types
*/
package api
