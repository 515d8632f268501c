// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package supervisor

import (
	"context"
	"errors"
	"sync"
)

// MockService is a controllable suture.Service for supervisor tests.
// By default it runs until its context is canceled; SetError and
// SetFailCount make it fail on demand.
type MockService struct {
	name string

	mu       sync.Mutex
	starts   int
	stops    int
	failures int
	maxFails int
	err      error
}

// NewMockService creates a mock service with the given name.
func NewMockService(name string) *MockService {
	return &MockService{name: name}
}

// Serve implements suture.Service.
func (m *MockService) Serve(ctx context.Context) error {
	m.mu.Lock()
	m.starts++
	err := m.err
	fail := m.maxFails > 0 && m.failures < m.maxFails
	if fail {
		m.failures++
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.stops++
		m.mu.Unlock()
	}()

	if fail {
		return errors.New("simulated failure")
	}
	if err != nil {
		return err
	}

	<-ctx.Done()
	return ctx.Err()
}

// SetError makes every Serve call return err immediately.
func (m *MockService) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetFailCount makes the next n Serve calls fail before the service
// settles into running normally.
func (m *MockService) SetFailCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxFails = n
}

// StartCount returns how many times Serve was called.
func (m *MockService) StartCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

// StopCount returns how many times Serve returned.
func (m *MockService) StopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// String implements fmt.Stringer; suture uses it in event logs.
func (m *MockService) String() string {
	return m.name
}
