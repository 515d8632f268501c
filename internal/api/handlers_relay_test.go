// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/adshrc/HookSocket/internal/logging"
	"github.com/adshrc/HookSocket/internal/models"
	"github.com/adshrc/HookSocket/internal/relay"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	// Initialize logging for tests with discard output
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// newTestHandler builds a Handler over a fresh manager wired to the
// standard prefix pairs. forwardHost is the webhook backend base URL;
// tests that never forward pass a dead address.
func newTestHandler(forwardHost string) (*Handler, *relay.Manager) {
	translator := relay.NewTranslator(
		relay.PrefixPair{Socket: "/websocket/", Webhook: "/webhook/"},
		relay.PrefixPair{Socket: "/websocket-test/", Webhook: "/webhook-test/"},
	)
	rule := relay.SuppressionRule{Field: "message", Values: []string{"Workflow was started"}}
	forwarder := relay.NewForwarder(relay.ForwarderOptions{Host: forwardHost, Timeout: 5 * time.Second})
	manager := relay.NewManager(relay.ManagerOptions{
		Translator: translator,
		Forwarder:  forwarder,
		Rule:       rule,
	})
	return NewHandler(manager, rule, "1.0.0"), manager
}

// decodeEnvelope unmarshals the standard response envelope.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response body is not a JSON envelope: %v\nbody: %s", err, w.Body.String())
	}
	return resp
}

// decodeReceipt unmarshals a successful broadcast receipt.
func decodeReceipt(t *testing.T, body []byte) models.BroadcastReceipt {
	t.Helper()
	var resp struct {
		Status string                  `json:"status"`
		Data   models.BroadcastReceipt `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("response body is not a receipt envelope: %v\nbody: %s", err, body)
	}
	if resp.Status != "success" {
		t.Fatalf("Status = %q, want success", resp.Status)
	}
	return resp.Data
}

// waitForStats polls the manager until the room and connection counts
// match or the deadline expires.
func waitForStats(t *testing.T, m *relay.Manager, rooms, conns int) {
	t.Helper()
	for i := 0; i < 50; i++ {
		r, c := m.Stats()
		if r == rooms && c == conns {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	r, c := m.Stats()
	t.Fatalf("Stats = (%d, %d), want (%d, %d)", r, c, rooms, conns)
}

func TestRelay_Preflight(t *testing.T) {
	h, m := newTestHandler("http://localhost:5678")
	defer m.CloseAll()

	// Preflights are answered on every path, known or not, and never
	// create a room.
	for _, path := range []string{"/websocket/chat-123", "/webhook/chat-123", "/unknown"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		w := httptest.NewRecorder()
		h.Relay(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("OPTIONS %s = %d, want %d", path, w.Code, http.StatusNoContent)
		}
		if w.Body.Len() != 0 {
			t.Errorf("OPTIONS %s wrote a body: %q", path, w.Body.String())
		}
	}

	if rooms, _ := m.Stats(); rooms != 0 {
		t.Errorf("preflights created %d rooms", rooms)
	}
}

func TestRelay_BroadcastReceipt(t *testing.T) {
	h, m := newTestHandler("http://localhost:5678")
	defer m.CloseAll()

	req := httptest.NewRequest(http.MethodPost, "/websocket/chat-123", strings.NewReader(`{"text":"broadcast"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Relay(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d\nbody: %s", w.Code, http.StatusOK, w.Body.String())
	}

	receipt := decodeReceipt(t, w.Body.Bytes())
	if receipt.Room != "/websocket/chat-123" {
		t.Errorf("Room = %q, want /websocket/chat-123", receipt.Room)
	}
	if receipt.Suppressed {
		t.Error("regular payload should not be suppressed")
	}
}

func TestRelay_BroadcastSuppression(t *testing.T) {
	tests := []struct {
		name           string
		contentType    string
		body           string
		wantSuppressed bool
	}{
		{"sentinel suppressed", "application/json", `{"message":"Workflow was started"}`, true},
		{"empty body suppressed", "application/json", "", true},
		{"regular payload delivered", "application/json", `{"text":"hello"}`, false},
		{"sentinel in plain text passes through", "text/plain", "Workflow was started", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newTestHandler("http://localhost:5678")
			defer m.CloseAll()

			req := httptest.NewRequest(http.MethodPost, "/websocket/chat-123", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()
			h.Relay(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d\nbody: %s", w.Code, http.StatusOK, w.Body.String())
			}
			receipt := decodeReceipt(t, w.Body.Bytes())
			if receipt.Suppressed != tt.wantSuppressed {
				t.Errorf("Suppressed = %v, want %v", receipt.Suppressed, tt.wantSuppressed)
			}
		})
	}
}

func TestRelay_BroadcastMalformedJSON(t *testing.T) {
	h, m := newTestHandler("http://localhost:5678")
	defer m.CloseAll()

	req := httptest.NewRequest(http.MethodPost, "/websocket/chat-123", strings.NewReader(`{"broken`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Relay(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	resp := decodeEnvelope(t, w)
	if resp.Error == nil || resp.Error.Code != "INVALID_BODY" {
		t.Errorf("Error = %+v, want code INVALID_BODY", resp.Error)
	}
}

func TestRelay_PathNotFound(t *testing.T) {
	h, m := newTestHandler("http://localhost:5678")
	defer m.CloseAll()

	tests := []struct {
		method string
		path   string
	}{
		// Webhook prefixes are forward targets, not inbound endpoints.
		{http.MethodPost, "/webhook/chat-123"},
		{http.MethodPost, "/webhook-test/chat-123"},
		{http.MethodPost, "/unknown/chat-123"},
		{http.MethodGet, "/unknown/chat-123"},
		{http.MethodDelete, "/nope"},
		{http.MethodPost, "/"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{"text":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.Relay(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, w.Code, http.StatusNotFound)
			continue
		}
		resp := decodeEnvelope(t, w)
		if resp.Error == nil || resp.Error.Code != "PATH_NOT_FOUND" {
			t.Errorf("%s %s Error = %+v, want code PATH_NOT_FOUND", tt.method, tt.path, resp.Error)
		}
	}

	if rooms, _ := m.Stats(); rooms != 0 {
		t.Errorf("unknown paths created %d rooms", rooms)
	}
}

func TestRelay_MethodNotAllowed(t *testing.T) {
	h, m := newTestHandler("http://localhost:5678")
	defer m.CloseAll()

	// A plain GET without a WebSocket handshake is rejected like any
	// other unsupported method on a socket path.
	for _, method := range []string{http.MethodGet, http.MethodDelete, http.MethodPut, http.MethodPatch} {
		req := httptest.NewRequest(method, "/websocket/chat-123", nil)
		w := httptest.NewRecorder()
		h.Relay(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s = %d, want %d", method, w.Code, http.StatusMethodNotAllowed)
			continue
		}
		resp := decodeEnvelope(t, w)
		if resp.Error == nil || resp.Error.Code != "METHOD_NOT_ALLOWED" {
			t.Errorf("%s Error = %+v, want code METHOD_NOT_ALLOWED", method, resp.Error)
		}
	}

	// Rejection goes through translation only; no rooms spring up.
	if rooms, _ := m.Stats(); rooms != 0 {
		t.Errorf("rejected methods created %d rooms", rooms)
	}
}

func TestRelay_UpgradeAndBroadcast(t *testing.T) {
	h, m := newTestHandler("http://localhost:5678")
	defer m.CloseAll()

	srv := httptest.NewServer(http.HandlerFunc(h.Relay))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/websocket/chat-123"
	client, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial error = %v", err)
	}
	defer client.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Errorf("handshake status = %d, want %d", resp.StatusCode, http.StatusSwitchingProtocols)
	}

	waitForStats(t, m, 1, 1)

	// An external POST to the same path reaches the connected client.
	res, err := http.Post(srv.URL+"/websocket/chat-123", "application/json", strings.NewReader(`{"text":"broadcast"}`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("POST status = %d, want %d\nbody: %s", res.StatusCode, http.StatusOK, body)
	}
	receipt := decodeReceipt(t, body)
	if receipt.Suppressed {
		t.Error("broadcast receipt reports suppressed")
	}

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage error = %v", err)
	}
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(msg, &payload); err != nil {
		t.Fatalf("delivered message is not JSON: %v", err)
	}
	if payload.Text != "broadcast" {
		t.Errorf("delivered text = %q, want broadcast", payload.Text)
	}
}

func TestRelay_UpgradeUnknownPath(t *testing.T) {
	h, m := newTestHandler("http://localhost:5678")
	defer m.CloseAll()

	srv := httptest.NewServer(http.HandlerFunc(h.Relay))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/unknown/chat-123"
	client, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		client.Close()
		t.Fatal("Dial succeeded on an unroutable path")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("handshake response = %v, want 404", resp)
	}

	if rooms, _ := m.Stats(); rooms != 0 {
		t.Errorf("failed upgrade created %d rooms", rooms)
	}
}

// TestRelay_RoomsAreIsolated verifies a broadcast only reaches clients
// connected to the same path.
func TestRelay_RoomsAreIsolated(t *testing.T) {
	h, m := newTestHandler("http://localhost:5678")
	defer m.CloseAll()

	srv := httptest.NewServer(http.HandlerFunc(h.Relay))
	defer srv.Close()

	wsBase := "ws" + strings.TrimPrefix(srv.URL, "http")

	clientA, _, err := websocket.DefaultDialer.Dial(wsBase+"/websocket/room-a", nil)
	if err != nil {
		t.Fatalf("Dial room-a error = %v", err)
	}
	defer clientA.Close()

	clientB, _, err := websocket.DefaultDialer.Dial(wsBase+"/websocket/room-b", nil)
	if err != nil {
		t.Fatalf("Dial room-b error = %v", err)
	}
	defer clientB.Close()

	waitForStats(t, m, 2, 2)

	res, err := http.Post(srv.URL+"/websocket/room-a", "application/json", strings.NewReader(`{"text":"only-a"}`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	res.Body.Close()

	_ = clientA.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := clientA.ReadMessage(); err != nil {
		t.Errorf("room-a client missed its broadcast: %v", err)
	}

	_ = clientB.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, msg, err := clientB.ReadMessage(); err == nil {
		t.Errorf("room-b client received foreign broadcast %q", msg)
	}
}
