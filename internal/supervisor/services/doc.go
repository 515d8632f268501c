// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

/*
Package services provides suture.Service wrappers for HookSocket components.

The wrappers adapt existing component lifecycles (ListenAndServe, Run) to
suture's context-aware Serve pattern so the supervisor tree can restart
them independently.

# Overview

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

The wrappers handle:
  - Lifecycle translation into the Serve pattern
  - Graceful shutdown via context cancellation
  - Error propagation for supervisor restart decisions
  - Service identification via fmt.Stringer

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts the blocking ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining webhook requests
  - Hijacked WebSocket connections are closed by the room manager,
    not by http.Server.Shutdown

Relay Manager (RelayManagerService):
  - Wraps relay.Manager, whose Run already matches the Serve pattern
  - Prunes idle rooms while running
  - Closes every room and its sockets on shutdown

# Usage Example

	import (
	    "net/http"
	    "time"

	    "github.com/adshrc/HookSocket/internal/supervisor"
	    "github.com/adshrc/HookSocket/internal/supervisor/services"
	)

	func setupSupervisor(server *http.Server, manager *relay.Manager) {
	    tree, _ := supervisor.NewSupervisorTree(logger, config)

	    tree.AddRelayService(services.NewRelayManagerService(manager))
	    tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	    tree.Serve(ctx)
	}

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

# See Also

  - internal/supervisor: SupervisorTree that manages these services
  - github.com/thejerf/suture/v4: Underlying supervision library
  - internal/relay: Room manager and forwarder implementation
*/
package services
