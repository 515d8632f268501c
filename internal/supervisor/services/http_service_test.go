// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*HTTPServerService)(nil)

// mockHTTPServer is a test double for the HTTPServer interface.
type mockHTTPServer struct {
	serveErr           error
	shutdownErr        error
	blockUntilShutdown bool

	listenCalls   atomic.Int32
	shutdownCalls atomic.Int32

	started  chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{
		started: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
	}
}

func (m *mockHTTPServer) ListenAndServe() error {
	m.listenCalls.Add(1)

	select {
	case m.started <- struct{}{}:
	default:
	}

	if m.serveErr != nil {
		return m.serveErr
	}
	if m.blockUntilShutdown {
		<-m.stopCh
		return http.ErrServerClosed
	}
	return nil
}

func (m *mockHTTPServer) Shutdown(_ context.Context) error {
	m.shutdownCalls.Add(1)
	m.stopOnce.Do(func() { close(m.stopCh) })
	return m.shutdownErr
}

// waitForStart blocks until ListenAndServe has been entered.
func (m *mockHTTPServer) waitForStart(t *testing.T) {
	t.Helper()
	select {
	case <-m.started:
	case <-time.After(time.Second):
		t.Fatal("server did not start")
	}
}

func TestNewHTTPServerService(t *testing.T) {
	server := newMockHTTPServer()
	svc := NewHTTPServerService(server, 10*time.Second)

	if svc == nil {
		t.Fatal("NewHTTPServerService returned nil")
	}
	if svc.server != server {
		t.Error("server not assigned correctly")
	}
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("shutdownTimeout = %v, want 10s", svc.shutdownTimeout)
	}
	if svc.name != "http-server" {
		t.Errorf("name = %q, want \"http-server\"", svc.name)
	}
}

func TestNewHTTPServerService_DefaultTimeout(t *testing.T) {
	for _, timeout := range []time.Duration{0, -5 * time.Second} {
		svc := NewHTTPServerService(newMockHTTPServer(), timeout)
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("shutdownTimeout for input %v = %v, want default 10s", timeout, svc.shutdownTimeout)
		}
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	t.Run("shuts down gracefully on context cancellation", func(t *testing.T) {
		server := newMockHTTPServer()
		server.blockUntilShutdown = true
		svc := NewHTTPServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		server.waitForStart(t)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() error = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return after context cancellation")
		}

		if got := server.listenCalls.Load(); got != 1 {
			t.Errorf("ListenAndServe calls = %d, want 1", got)
		}
		if got := server.shutdownCalls.Load(); got != 1 {
			t.Errorf("Shutdown calls = %d, want 1", got)
		}
	})

	t.Run("returns nil when the server stops on its own", func(t *testing.T) {
		server := newMockHTTPServer()
		svc := NewHTTPServerService(server, time.Second)

		if err := svc.Serve(context.Background()); err != nil {
			t.Errorf("Serve() error = %v, want nil", err)
		}
	})

	t.Run("returns error on startup failure", func(t *testing.T) {
		bindErr := errors.New("bind: address already in use")
		server := newMockHTTPServer()
		server.serveErr = bindErr
		svc := NewHTTPServerService(server, time.Second)

		err := svc.Serve(context.Background())
		if !errors.Is(err, bindErr) {
			t.Errorf("Serve() error = %v, want %v", err, bindErr)
		}
	})

	t.Run("returns shutdown error if shutdown fails", func(t *testing.T) {
		shutdownErr := errors.New("shutdown timeout")
		server := newMockHTTPServer()
		server.blockUntilShutdown = true
		server.shutdownErr = shutdownErr
		svc := NewHTTPServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		server.waitForStart(t)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, shutdownErr) {
				t.Errorf("Serve() error = %v, want %v", err, shutdownErr)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
		}
	})
}

func TestHTTPServerService_String(t *testing.T) {
	svc := NewHTTPServerService(newMockHTTPServer(), time.Second)

	if got := svc.String(); got != "http-server" {
		t.Errorf("String() = %q, want \"http-server\"", got)
	}
}

func TestHTTPServerService_WithSupervisor(t *testing.T) {
	server := newMockHTTPServer()
	server.blockUntilShutdown = true
	svc := NewHTTPServerService(server, time.Second)

	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          2 * time.Second,
	})
	sup.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := sup.ServeBackground(ctx)

	server.waitForStart(t)
	cancel()
	<-errCh

	if got := server.shutdownCalls.Load(); got < 1 {
		t.Error("server Shutdown was not called")
	}
}
