// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

// Package models defines the shared wire types for HookSocket's HTTP surface.
package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP
// endpoints outside the relay's raw WebSocket path. It provides consistent
// structure for both successful and error responses.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"room": "/websocket/chat-123", "suppressed": false},
//	  "metadata": {"timestamp": "2026-08-25T12:00:00Z"}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "PATH_NOT_FOUND", "message": "no socket prefix matches path"},
//	  "metadata": {"timestamp": "2026-08-25T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - PATH_NOT_FOUND: No configured socket prefix matches the request path
//   - METHOD_NOT_ALLOWED: Unsupported method on a relay path
//   - INVALID_BODY: Body declared JSON but not parseable
//   - RATE_LIMIT_EXCEEDED: Too many requests
//   - INTERNAL_ERROR: Unexpected server-side failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// BroadcastReceipt is the Data payload returned for an accepted external
// broadcast request. Suppressed reports whether the body matched the
// configured acknowledgment sentinel and was therefore not delivered.
type BroadcastReceipt struct {
	Room       string `json:"room"`
	Suppressed bool   `json:"suppressed"`
}

// HealthStatus is the Data payload of the health endpoint.
type HealthStatus struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Rooms         int    `json:"rooms"`
	Connections   int    `json:"connections"`
}
