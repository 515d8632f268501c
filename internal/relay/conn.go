// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package relay

import (
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/adshrc/HookSocket/internal/logging"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// MaxMessageSize is the maximum inbound frame size in bytes (512KB).
	// Forward replies and external broadcast bodies are capped at the
	// same size before broadcast.
	MaxMessageSize = 512 * 1024

	// sendBufferSize is the per-connection outbound queue depth. A
	// connection whose queue stays full during a broadcast is evicted.
	sendBufferSize = 256
)

// Eviction reasons, used as metric labels and in logs.
const (
	EvictReasonClosed     = "closed"
	EvictReasonSendFailed = "send_failed"
	EvictReasonKeepalive  = "keepalive"
	EvictReasonShutdown   = "shutdown"
)

// connSeqCounter hands out admission sequence numbers. Broadcast and
// shutdown iterate connections in admission order, which keeps delivery
// deterministic and reproducible in tests.
var connSeqCounter atomic.Uint64

// Conn is a single relayed WebSocket connection. Its identity is a fresh
// UUID assigned at admission and never recycled; once evicted from the
// registry a Conn is gone for good.
type Conn struct {
	id  string
	seq uint64

	room *Room
	ws   *websocket.Conn
	send chan []byte

	// forwardBase is the scheme+host client messages are forwarded to,
	// resolved from the upgrade request when this connection was admitted.
	forwardBase string

	// closeReason is written by the read pump before it unregisters and
	// read by the room's run loop afterwards; the unregister channel
	// provides the happens-before edge.
	closeReason string

	// pingFailed marks a keepalive probe write failure so the read pump,
	// which observes the resulting close, can attribute the eviction.
	pingFailed atomic.Bool
}

// newConn wraps an upgraded WebSocket connection for the given room.
func newConn(room *Room, ws *websocket.Conn, forwardBase string) *Conn {
	return &Conn{
		id:          uuid.NewString(),
		seq:         connSeqCounter.Add(1),
		room:        room,
		ws:          ws,
		send:        make(chan []byte, sendBufferSize),
		forwardBase: forwardBase,
		closeReason: EvictReasonClosed,
	}
}

// ID returns the connection's admission-assigned identifier.
func (c *Conn) ID() string {
	return c.id
}

// start launches the read and write pumps.
func (c *Conn) start() {
	go c.writePump()
	go c.readPump()
}

// readPump reads frames from the peer and forwards each data message to
// the webhook backend. It owns the read side: pong handling, read limits,
// and the keepalive deadline all live here. On exit the connection is
// unregistered from its room and the transport closed.
func (c *Conn) readPump() {
	defer func() {
		c.room.unregisterConn(c)
		c.ws.Close()
	}()

	pongWait := 2 * c.room.keepalive
	c.ws.SetReadLimit(MaxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, raw, err := c.ws.ReadMessage()
		if err != nil {
			c.closeReason = c.evictReason(err)
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Debug().
					Err(err).
					Str("conn_id", c.id).
					Str("room", c.room.key).
					Msg("websocket read ended")
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		// Forwarding runs on this goroutine so one client's messages
		// reach the backend in send order.
		c.room.relayClientMessage(c, raw)
	}
}

// evictReason classifies the read error that ended this connection.
func (c *Conn) evictReason(err error) string {
	if c.pingFailed.Load() {
		return EvictReasonKeepalive
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		// Read deadline expired: the peer missed its pong window.
		return EvictReasonKeepalive
	}
	return EvictReasonClosed
}

// writePump writes queued broadcasts and keepalive pings to the peer.
// A closed send channel means the registry removed this connection; the
// pump answers with a close frame and exits. Any write error tears the
// transport down, which ends the read pump as well.
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.room.keepalive)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				logging.Debug().
					Err(err).
					Str("conn_id", c.id).
					Str("room", c.room.key).
					Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.pingFailed.Store(true)
				return
			}
		}
	}
}
