// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package api

import (
	"net/http"
	"time"

	"github.com/adshrc/HookSocket/internal/metrics"
	"github.com/adshrc/HookSocket/internal/models"
)

// Health handles health check requests. The relay has no external
// dependencies to probe at request time (the webhook backend is only
// reachable per-room), so a live process is a healthy process; the
// payload carries the current room and connection counts for operators.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	rooms, connections := h.manager.Stats()
	metrics.UpdateUptime(h.startTime)

	health := models.HealthStatus{
		Status:        "healthy",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Rooms:         rooms,
		Connections:   connections,
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   health,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
