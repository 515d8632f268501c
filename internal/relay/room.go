// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package relay

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adshrc/HookSocket/internal/logging"
	"github.com/adshrc/HookSocket/internal/metrics"
)

// Broadcast sources, used as metric labels.
const (
	// SourceExternal marks broadcasts triggered by an HTTP POST to the
	// room path.
	SourceExternal = "external"

	// SourceReply marks broadcasts carrying a webhook backend's reply to
	// a forwarded client message.
	SourceReply = "reply"
)

// broadcastMsg pairs a prepared payload with its origin for metrics.
type broadcastMsg struct {
	data   []byte
	source string
}

// Room owns the connection registry for one relay path and broadcasts
// messages to every registered connection. All registry mutation funnels
// through the run goroutine; the mutex only covers count and snapshot
// reads from other goroutines.
type Room struct {
	key         string
	forwardPath string

	forwarder *Forwarder
	rule      SuppressionRule
	keepalive time.Duration

	mu       sync.RWMutex
	registry map[string]*Conn
	// emptySince is when the registry last became (or started) empty;
	// zero while occupied. The Manager reads it to prune idle rooms.
	emptySince time.Time

	register   chan *Conn
	unregister chan *Conn
	broadcast  chan broadcastMsg

	// done is closed when the run loop exits; admissions and broadcasts
	// racing a shutdown observe it instead of blocking forever.
	done chan struct{}
}

// newRoom creates a Room for the given path. The caller starts run.
func newRoom(key, forwardPath string, fw *Forwarder, rule SuppressionRule, keepalive time.Duration) *Room {
	return &Room{
		key:         key,
		forwardPath: forwardPath,
		forwarder:   fw,
		rule:        rule,
		keepalive:   keepalive,
		registry:    make(map[string]*Conn),
		emptySince:  time.Now(),
		register:    make(chan *Conn),
		unregister:  make(chan *Conn),
		broadcast:   make(chan broadcastMsg, 256),
		done:        make(chan struct{}),
	}
}

// Key returns the inbound path that addresses this room.
func (r *Room) Key() string {
	return r.key
}

// ForwardPath returns the webhook-side path client messages forward to.
func (r *Room) ForwardPath() string {
	return r.forwardPath
}

// Admit registers an upgraded WebSocket connection and starts its pumps.
// forwardBase is the scheme+host this connection's messages forward to.
// Returns the assigned connection id, or ErrRoomClosed when the room shut
// down between lookup and admission.
func (r *Room) Admit(ws *websocket.Conn, forwardBase string) (string, error) {
	conn := newConn(r, ws, forwardBase)
	select {
	case r.register <- conn:
	case <-r.done:
		return "", ErrRoomClosed
	}
	conn.start()
	return conn.id, nil
}

// unregisterConn hands a connection back to the run loop for removal.
// Safe to call after the room stopped; removal is idempotent either way.
func (r *Room) unregisterConn(c *Conn) {
	select {
	case r.unregister <- c:
	case <-r.done:
	}
}

// Broadcast queues a payload for delivery to every registered connection.
// Delivery is best-effort: when the room is shutting down or its queue is
// full the payload is dropped with a log line.
func (r *Room) Broadcast(data []byte, source string) {
	select {
	case <-r.done:
		logging.Debug().Str("room", r.key).Msg("room closed, dropping broadcast")
		return
	default:
	}

	select {
	case r.broadcast <- broadcastMsg{data: data, source: source}:
	default:
		logging.Warn().Str("room", r.key).Str("source", source).Msg("broadcast channel full, dropping message")
	}
}

// ConnCount returns the number of registered connections.
func (r *Room) ConnCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.registry)
}

// IdleSince reports when the room last became empty; zero while occupied.
func (r *Room) IdleSince() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.emptySince
}

// closed reports whether the run loop has exited.
func (r *Room) closed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// run drives the room until ctx is canceled, then closes every connection
// with a close frame.
//
// DETERMINISM: Uses priority-based selection to ensure predictable
// behavior when multiple channels are ready simultaneously (Go's select
// picks randomly in that case):
//   - Priority 1: Shutdown (context cancellation)
//   - Priority 2: Connection lifecycle events (register/unregister)
//   - Priority 3: Broadcast messages
//
// This ensures registry state is always settled before a broadcast is
// processed.
func (r *Room) run(ctx context.Context) {
	defer close(r.done)

	for {
		// Priority 1: Check for shutdown (non-blocking)
		select {
		case <-ctx.Done():
			r.closeAllConns()
			return
		default:
		}

		// Priority 2: Handle lifecycle events (non-blocking check)
		select {
		case conn := <-r.register:
			r.addConn(conn)
			continue
		case conn := <-r.unregister:
			r.removeConn(conn, conn.closeReason)
			continue
		default:
		}

		// Priority 3: Handle broadcasts, or wait for any event (blocking)
		select {
		case <-ctx.Done():
			r.closeAllConns()
			return

		case conn := <-r.register:
			r.addConn(conn)

		case conn := <-r.unregister:
			r.removeConn(conn, conn.closeReason)

		case msg := <-r.broadcast:
			r.broadcastToConns(msg)
		}
	}
}

// addConn stores a connection in the registry.
func (r *Room) addConn(conn *Conn) {
	r.mu.Lock()
	r.registry[conn.id] = conn
	r.emptySince = time.Time{}
	total := len(r.registry)
	r.mu.Unlock()

	metrics.RecordAdmission()
	logging.Info().
		Str("room", r.key).
		Str("conn_id", conn.id).
		Int("room_connections", total).
		Msg("websocket client connected")
}

// removeConn drops a connection from the registry and closes its send
// queue, which stops the write pump. Idempotent: a connection already
// removed (a send failure racing the read pump's unregister) is a no-op.
func (r *Room) removeConn(conn *Conn, reason string) {
	r.mu.Lock()
	_, present := r.registry[conn.id]
	if present {
		delete(r.registry, conn.id)
		close(conn.send)
		if len(r.registry) == 0 {
			r.emptySince = time.Now()
		}
	}
	total := len(r.registry)
	r.mu.Unlock()

	if !present {
		return
	}

	metrics.RecordEviction(reason)
	logging.Info().
		Str("room", r.key).
		Str("conn_id", conn.id).
		Str("reason", reason).
		Int("room_connections", total).
		Msg("websocket client disconnected")
}

// broadcastToConns delivers a payload to every registered connection in
// admission order.
//
// Delivery is two-phase: every connection whose send queue rejects the
// payload is marked during iteration, then all marked connections are
// removed after it. The registry map is never mutated mid-iteration.
func (r *Room) broadcastToConns(msg broadcastMsg) {
	r.mu.Lock()

	conns := make([]*Conn, 0, len(r.registry))
	for _, conn := range r.registry {
		conns = append(conns, conn)
	}
	// DETERMINISM: admission order makes delivery reproducible.
	sort.Slice(conns, func(i, j int) bool {
		return conns[i].seq < conns[j].seq
	})

	var toRemove []*Conn
	delivered := 0
	for _, conn := range conns {
		select {
		case conn.send <- msg.data:
			delivered++
		default:
			// Queue full or connection stalled: mark for removal.
			toRemove = append(toRemove, conn)
		}
	}

	for _, conn := range toRemove {
		close(conn.send)
		delete(r.registry, conn.id)
	}
	if len(toRemove) > 0 && len(r.registry) == 0 {
		r.emptySince = time.Now()
	}
	r.mu.Unlock()

	metrics.RecordBroadcast(msg.source, delivered, len(toRemove))
	if len(toRemove) > 0 {
		logging.Warn().
			Str("room", r.key).
			Int("evicted", len(toRemove)).
			Int("delivered", delivered).
			Msg("evicted stalled connections during broadcast")
	}
}

// closeAllConns evicts every connection during shutdown. Closing the send
// queues makes the write pumps send close frames and exit.
func (r *Room) closeAllConns() {
	r.mu.Lock()
	conns := make([]*Conn, 0, len(r.registry))
	for _, conn := range r.registry {
		conns = append(conns, conn)
	}
	sort.Slice(conns, func(i, j int) bool {
		return conns[i].seq < conns[j].seq
	})
	for _, conn := range conns {
		close(conn.send)
		delete(r.registry, conn.id)
	}
	r.emptySince = time.Now()
	r.mu.Unlock()

	for range conns {
		metrics.RecordEviction(EvictReasonShutdown)
	}
	if len(conns) > 0 {
		logging.Info().
			Str("room", r.key).
			Int("conns_closed", len(conns)).
			Msg("closed all connections during room shutdown")
	}
}

// relayClientMessage forwards one inbound client message to the webhook
// backend and broadcasts the backend's reply to the room. It runs on the
// originating connection's read pump, so a single client's messages reach
// the backend in send order without stalling other rooms.
//
// Transport failures and rejected (open-breaker) forwards are logged and
// swallowed: the originating client is never informed over its own
// connection. The forward also outlives the connection: a reply to a
// message from a now-closed client still broadcasts to whoever remains
// in the room.
func (r *Room) relayClientMessage(c *Conn, raw []byte) {
	metrics.MessagesReceived.Inc()

	res, err := r.forwarder.Forward(context.Background(), c.forwardBase, r.forwardPath, raw)
	if err != nil {
		logging.Warn().
			Err(err).
			Str("room", r.key).
			Str("conn_id", c.id).
			Msg("webhook forward failed")
		return
	}

	msg, suppress, err := PrepareMessage(res.ContentType, res.Body, r.rule)
	if err != nil {
		logging.Warn().
			Err(err).
			Str("room", r.key).
			Int("status", res.StatusCode).
			Msg("webhook reply unparseable, dropping")
		return
	}
	if suppress {
		metrics.MessagesSuppressed.Inc()
		logging.Debug().
			Str("room", r.key).
			Int("status", res.StatusCode).
			Msg("webhook reply suppressed")
		return
	}

	r.Broadcast(msg, SourceReply)
}
