// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adshrc/HookSocket/internal/logging"
	"github.com/adshrc/HookSocket/internal/metrics"
	"github.com/adshrc/HookSocket/internal/models"
	"github.com/adshrc/HookSocket/internal/relay"
)

// Relay is the catch-all handler for the relay's URL space. The method
// and handshake headers select the behavior:
//
//   - OPTIONS: CORS preflight, answered 204. The CORS middleware set the
//     Access-Control headers before passing the request through.
//   - GET with a WebSocket handshake: upgrade and admit the client into
//     the room named by the full request path.
//   - POST: broadcast the body to the room's connected clients.
//   - Anything else: 405 on a known socket path, 404 otherwise.
//
// Room keys are full request paths; only paths under a configured socket
// prefix resolve to a room. Webhook-side prefixes never match here, so a
// POST to a webhook path is 404 even though the relay forwards to it.
func (h *Handler) Relay(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet && websocket.IsWebSocketUpgrade(r):
		h.upgrade(w, r)
	case r.Method == http.MethodPost:
		h.broadcast(w, r)
	default:
		h.reject(w, r)
	}
}

// upgrade admits a WebSocket client into the room named by the request
// path. The room is resolved before the upgrade so an unknown path still
// gets a plain HTTP 404 instead of a failed handshake.
func (h *Handler) upgrade(w http.ResponseWriter, r *http.Request) {
	room, err := h.manager.GetOrCreate(r.URL.Path)
	if err != nil {
		var pathErr *relay.PathTranslationError
		if errors.As(err, &pathErr) {
			respondError(w, http.StatusNotFound, "PATH_NOT_FOUND", "No socket prefix matches the request path", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve room", err)
		return
	}

	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		logging.Warn().
			Err(err).
			Str("room", sanitizeLogValue(room.Key())).
			Str("remote_addr", r.RemoteAddr).
			Msg("WebSocket upgrade failed")
		return
	}

	connID, err := room.Admit(ws, r.Host)
	if errors.Is(err, relay.ErrRoomClosed) {
		// The idle pruner can retire a room between lookup and admission.
		// A second lookup yields a fresh live room.
		room, err = h.manager.GetOrCreate(r.URL.Path)
		if err == nil {
			connID, err = room.Admit(ws, r.Host)
		}
	}
	if err != nil {
		// The handshake is done, so no HTTP status can be sent anymore.
		logging.Warn().
			Err(err).
			Str("room", sanitizeLogValue(r.URL.Path)).
			Msg("Admission failed after upgrade, closing connection")
		_ = ws.Close()
		return
	}

	logging.Info().
		Str("conn_id", connID).
		Str("room", sanitizeLogValue(room.Key())).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket client connected")
}

// broadcast delivers an external POST body to every client in the room.
// The body goes through the same suppression rule as forwarded webhook
// replies; a suppressed body still gets a 200 receipt, it just reaches
// nobody. An unparseable JSON body is the caller's error (400), unlike
// the reply path where it is logged and dropped.
func (h *Handler) broadcast(w http.ResponseWriter, r *http.Request) {
	room, err := h.manager.GetOrCreate(r.URL.Path)
	if err != nil {
		var pathErr *relay.PathTranslationError
		if errors.As(err, &pathErr) {
			respondError(w, http.StatusNotFound, "PATH_NOT_FOUND", "No socket prefix matches the request path", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve room", err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, relay.MaxMessageSize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Failed to read request body", err)
		return
	}

	msg, suppressed, err := relay.PrepareMessage(r.Header.Get("Content-Type"), body, h.rule)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Body declared JSON but is not parseable", err)
		return
	}

	if suppressed {
		metrics.MessagesSuppressed.Inc()
		logging.Debug().
			Str("room", sanitizeLogValue(room.Key())).
			Msg("External broadcast suppressed")
	} else {
		room.Broadcast(msg, relay.SourceExternal)
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.BroadcastReceipt{
			Room:       room.Key(),
			Suppressed: suppressed,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// reject answers requests that matched no behavior: 405 when the path
// belongs to the relay's socket space, 404 when it does not. A plain GET
// without a WebSocket handshake lands here too.
func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	if _, err := h.manager.Translate(r.URL.Path); err != nil {
		respondError(w, http.StatusNotFound, "PATH_NOT_FOUND", "No socket prefix matches the request path", nil)
		return
	}
	respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
		"Relay paths accept WebSocket upgrades (GET) and broadcasts (POST)", nil)
}
