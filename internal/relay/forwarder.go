// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package relay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/adshrc/HookSocket/internal/logging"
	"github.com/adshrc/HookSocket/internal/metrics"
)

// ForwardResult is the webhook backend's reply to a forwarded message.
// Non-2xx replies are results, not errors: the backend spoke, and whatever
// it said goes through the same suppression and broadcast pipeline.
type ForwardResult struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// ForwarderOptions configures outbound webhook delivery.
type ForwarderOptions struct {
	// Host overrides the forward target. Empty means forward back to the
	// host the WebSocket connection arrived on. A bare host:port is
	// assumed to be https.
	Host string

	// Timeout bounds each outbound request end to end.
	Timeout time.Duration
}

// Forwarder posts relayed client messages to the webhook backend with
// circuit breaker protection.
//
// DETERMINISM NOTE: The circuit breaker runs on real time (sony/gobreaker
// interval and timeout). Tests point the forwarder at a test server rather
// than mocking the breaker.
type Forwarder struct {
	client *http.Client
	cb     *gobreaker.CircuitBreaker[*ForwardResult]
	host   string
	name   string
}

// NewForwarder creates a Forwarder for the configured webhook target.
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 30 second timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func NewForwarder(opts ForwarderOptions) *Forwarder {
	cbName := "webhook-forward"

	// Initialize circuit breaker state metrics
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[*ForwardResult](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,                // Allow 3 concurrent requests in half-open state
		Interval:    time.Minute,      // Reset counts after 1 minute in closed state
		Timeout:     30 * time.Second, // Wait 30 seconds before transitioning from open to half-open

		// ReadyToTrip determines when to open the circuit
		// Opens when failure rate >= 60% with minimum 10 requests
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false // Need at least 10 requests for statistical significance
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		// OnStateChange is called whenever the circuit breaker changes state
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			// Update metrics
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			// Reset consecutive failures when transitioning to closed
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &Forwarder{
		client: &http.Client{Timeout: opts.Timeout},
		cb:     cb,
		host:   opts.Host,
		name:   cbName,
	}
}

// Forward posts one client message to the webhook backend and returns the
// reply. The raw message is delivered as a JSON string ("hi" on the wire
// for a client frame hi), which n8n-style webhook nodes decode natively.
//
// requestHost is the Host header of the originating WebSocket request,
// used as the target when no forward host is configured.
func (f *Forwarder) Forward(ctx context.Context, requestHost, path string, payload []byte) (*ForwardResult, error) {
	start := time.Now()

	body, err := json.Marshal(string(payload))
	if err != nil {
		metrics.RecordForward(time.Since(start), err, "encode")
		return nil, fmt.Errorf("encode forward body: %w", err)
	}

	result, err := f.cb.Execute(func() (*ForwardResult, error) {
		return f.post(ctx, requestHost, path, body)
	})

	// Update metrics based on result
	if err != nil {
		errorType := "transport"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			// Circuit is open or too many concurrent requests in half-open state
			errorType = "breaker_open"
			metrics.CircuitBreakerRequests.WithLabelValues(f.name, "rejected").Inc()
			logging.Warn().Err(err).Str("path", path).Msg("[CIRCUIT BREAKER] Forward rejected")
		} else {
			// Request failed
			metrics.CircuitBreakerRequests.WithLabelValues(f.name, "failure").Inc()

			// Increment consecutive failures
			counts := f.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(f.name).Set(float64(counts.ConsecutiveFailures))
		}
		metrics.RecordForward(time.Since(start), err, errorType)
		return nil, err
	}

	// Request succeeded
	metrics.CircuitBreakerRequests.WithLabelValues(f.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(f.name).Set(0)
	metrics.RecordForward(time.Since(start), nil, "")

	logging.Debug().
		Str("path", path).
		Int("status", result.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("webhook forward complete")

	return result, nil
}

// State returns the circuit breaker's current state.
func (f *Forwarder) State() gobreaker.State {
	return f.cb.State()
}

// Counts returns the circuit breaker's current counts.
func (f *Forwarder) Counts() gobreaker.Counts {
	return f.cb.Counts()
}

// Name returns the circuit breaker name.
func (f *Forwarder) Name() string {
	return f.name
}

// post performs the HTTP POST. Only transport-level failures return an
// error (and count against the circuit breaker); any reply with a status
// code is a result.
func (f *Forwarder) post(ctx context.Context, requestHost, path string, body []byte) (*ForwardResult, error) {
	target := f.resolveBaseURL(requestHost) + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build forward request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forward to %s: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Replies are capped at the broadcast message size; anything larger
	// is truncated rather than buffered without bound.
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxMessageSize))
	if err != nil {
		return nil, fmt.Errorf("read forward reply: %w", err)
	}

	return &ForwardResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// resolveBaseURL picks the scheme+host the forward targets. A configured
// host wins over the inbound request host; hosts without a scheme are
// assumed https.
func (f *Forwarder) resolveBaseURL(requestHost string) string {
	host := f.host
	if host == "" {
		host = requestHost
	}
	if strings.Contains(host, "://") {
		return strings.TrimSuffix(host, "/")
	}
	return "https://" + strings.TrimSuffix(host, "/")
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
