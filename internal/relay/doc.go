// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

/*
Package relay implements the room-scoped bridge between persistent WebSocket
clients and stateless webhook endpoints.

A client holds a long-lived WebSocket connection addressed by a room path
(for example /websocket/chat-123). Messages it sends are POSTed to the
webhook counterpart of that path (/webhook/chat-123); the webhook's reply,
and any external POST addressed to the room path, are broadcast to every
socket currently connected to that room. Rooms are fully isolated by path:
no message ever crosses rooms.

Key Components:

  - Manager: Owns the rooms map; the only component that creates or
    destroys rooms. Prunes rooms that stay empty past the idle TTL.
  - Room: Central broker for one path. Owns the connection registry and
    serializes all registry mutation through a single run goroutine.
  - Conn: A single relayed WebSocket connection with read/write goroutines.
  - Translator: Rewrites socket-side request paths into webhook-side
    forward paths using configured prefix pairs.
  - Forwarder: POSTs relayed client messages to the webhook backend,
    wrapped in a circuit breaker.

Architecture:

	┌─────────┐  GetOrCreate(path)  ┌────────┐
	│ Manager │────────────────────▶│  Room  │ ← Broadcasts to all conns
	└─────────┘                     └───┬────┘
	                                    │
	                         ┌──────────┼──────────┐
	                         │          │          │
	                       Conn1      Conn2      Conn3
	                         │
	                         ▼ (read pump)
	                    ┌───────────┐   POST {host}{webhook path}
	                    │ Forwarder │──────────────────────────────▶ backend
	                    └───────────┘   reply body → broadcast

Each connection has two goroutines:
  - readPump: reads client frames, forwards each one to the webhook
    backend, and broadcasts the backend's reply to the room
  - writePump: writes queued broadcasts and keepalive pings

Message Flow:

 1. Client frame → readPump → Forwarder.Forward → backend POST
 2. Backend reply body → PrepareMessage (suppression check) → Room broadcast
 3. External POST body → PrepareMessage → Room broadcast (via the api layer)

Payloads are opaque: the relay never validates or transforms client
messages beyond the JSON re-encoding documented on PrepareMessage.

Connection Lifecycle:

 1. Client connects via HTTP upgrade on a room path
 2. Room admits the connection under a fresh UUID
 3. Connection starts read/write goroutines
 4. Room broadcasts messages to all connections in admission order
 5. Connection leaves on peer close, send failure, or keepalive timeout
 6. Room removes it from the registry (idempotent) and closes its queue

Thread Safety:

The package is fully thread-safe:
  - Each Room serializes registry mutation through one run goroutine fed
    by register/unregister/broadcast channels with priority selection
    (shutdown first, then lifecycle, then broadcasts)
  - The registry map is additionally guarded by a mutex for count and
    snapshot reads
  - Forward calls run on the originating connection's read pump, so one
    client's messages reach the backend in send order without stalling
    other rooms

Keepalive:

Liveness uses the transport's native ping/pong:
  - writeWait: 10 seconds (time allowed to write a message)
  - ping interval: configurable, 30 seconds by default
  - pong wait: twice the ping interval
  - MaxMessageSize: 512 KB (inbound frames, forward replies, broadcast bodies)

A connection that misses its pong window or fails a ping write is evicted;
eviction is terminal, the id is never reused.

See Also:

  - github.com/gorilla/websocket: Underlying WebSocket library
  - internal/api: HTTP surface (upgrade, broadcast POST, CORS)
  - internal/config: path prefixes, keepalive, and suppression settings
*/
package relay
