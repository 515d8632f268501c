// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adshrc/HookSocket/internal/relay"
)

// Handler serves the relay's HTTP surface: the catch-all relay endpoint
// and the health endpoint. One Handler instance serves all requests.
type Handler struct {
	manager *relay.Manager

	// rule is applied to external broadcast bodies before delivery. It is
	// the same rule rooms apply to forwarded webhook replies.
	rule relay.SuppressionRule

	version   string
	startTime time.Time
}

// NewHandler creates a Handler backed by the given room manager.
func NewHandler(manager *relay.Manager, rule relay.SuppressionRule, version string) *Handler {
	return &Handler{
		manager:   manager,
		rule:      rule,
		version:   version,
		startTime: time.Now(),
	}
}

// getUpgrader creates a WebSocket upgrader with a handshake timeout for
// protection against slow client attacks.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts every origin. Room paths are unguessable
// caller-chosen endpoints, the relay carries no credentials or cookies,
// and many legitimate clients (workflow engines, CLI tools, server-side
// integrations) send no Origin header at all.
func (h *Handler) checkWebSocketOrigin(_ *http.Request) bool {
	return true
}
