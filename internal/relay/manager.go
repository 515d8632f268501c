// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package relay

import (
	"context"
	"sync"
	"time"

	"github.com/adshrc/HookSocket/internal/logging"
	"github.com/adshrc/HookSocket/internal/metrics"
)

// ManagerOptions configures room creation.
type ManagerOptions struct {
	Translator *Translator
	Forwarder  *Forwarder
	Rule       SuppressionRule

	// Keepalive is the ping interval handed to every room's connections.
	// Zero means the 30 second default.
	Keepalive time.Duration

	// IdleTTL is how long a room may sit empty before it is pruned.
	// Zero disables pruning; rooms then live until shutdown.
	IdleTTL time.Duration
}

const defaultKeepalive = 30 * time.Second

// Manager owns the room table: it creates rooms on demand keyed by the
// full inbound path, prunes rooms that stay empty past their TTL, and
// tears everything down on shutdown.
type Manager struct {
	translator *Translator
	forwarder  *Forwarder
	rule       SuppressionRule
	keepalive  time.Duration
	idleTTL    time.Duration

	mu      sync.RWMutex
	rooms   map[string]*Room
	cancels map[string]context.CancelFunc

	// baseCtx parents every room context, so rooms die with the manager
	// even if their individual cancel was never invoked.
	baseCtx context.Context
	stopAll context.CancelFunc
}

// NewManager creates a Manager. Rooms are started lazily by GetOrCreate.
func NewManager(opts ManagerOptions) *Manager {
	keepalive := opts.Keepalive
	if keepalive <= 0 {
		keepalive = defaultKeepalive
	}

	baseCtx, stopAll := context.WithCancel(context.Background())

	return &Manager{
		translator: opts.Translator,
		forwarder:  opts.Forwarder,
		rule:       opts.Rule,
		keepalive:  keepalive,
		idleTTL:    opts.IdleTTL,
		rooms:      make(map[string]*Room),
		cancels:    make(map[string]context.CancelFunc),
		baseCtx:    baseCtx,
		stopAll:    stopAll,
	}
}

// GetOrCreate returns the room for an inbound path, creating and starting
// it on first use. Paths outside the configured socket prefixes return a
// *PathTranslationError.
//
// A returned room is always live at the moment of return: pruning removes
// a room from the table in the same critical section that cancels it, so
// the table never holds a closed room. A caller racing the pruner can
// still observe ErrRoomClosed from Admit; re-fetching yields a fresh room.
func (m *Manager) GetOrCreate(path string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if room, ok := m.rooms[path]; ok {
		return room, nil
	}

	forwardPath, err := m.translator.Translate(path)
	if err != nil {
		return nil, err
	}

	room := newRoom(path, forwardPath, m.forwarder, m.rule, m.keepalive)
	roomCtx, cancel := context.WithCancel(m.baseCtx)
	m.rooms[path] = room
	m.cancels[path] = cancel
	go room.run(roomCtx)

	metrics.SetRooms(len(m.rooms))
	logging.Info().
		Str("room", path).
		Str("forward_path", forwardPath).
		Int("total_rooms", len(m.rooms)).
		Msg("room created")

	return room, nil
}

// Translate resolves an inbound path to its webhook-side forward path
// without creating a room. Used by the HTTP layer to tell an unknown
// path (404) from a known path hit with the wrong method (405).
func (m *Manager) Translate(path string) (string, error) {
	return m.translator.Translate(path)
}

// Stats returns the current room and connection counts.
func (m *Manager) Stats() (rooms, connections int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, room := range m.rooms {
		connections += room.ConnCount()
	}
	return len(m.rooms), connections
}

// Run drives idle-room pruning until ctx is canceled, then closes every
// room. It always returns ctx.Err(), making it suitable as a supervised
// service body.
func (m *Manager) Run(ctx context.Context) error {
	var sweep <-chan time.Time
	if m.idleTTL > 0 {
		interval := m.idleTTL / 2
		if interval < time.Second {
			interval = time.Second
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		sweep = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			m.CloseAll()
			return ctx.Err()
		case <-sweep:
			m.pruneIdle()
		}
	}
}

// pruneIdle removes rooms that have been empty for at least the TTL.
// Holding m.mu while reading room counters is safe: rooms never call back
// into the manager, so the manager-then-room lock order is consistent.
func (m *Manager) pruneIdle() {
	now := time.Now()

	m.mu.Lock()
	var pruned []string
	for key, room := range m.rooms {
		if room.ConnCount() > 0 {
			continue
		}
		idle := room.IdleSince()
		if idle.IsZero() || now.Sub(idle) < m.idleTTL {
			continue
		}
		m.cancels[key]()
		delete(m.cancels, key)
		delete(m.rooms, key)
		pruned = append(pruned, key)
	}
	if len(pruned) > 0 {
		metrics.SetRooms(len(m.rooms))
	}
	m.mu.Unlock()

	for _, key := range pruned {
		logging.Info().Str("room", key).Msg("pruned idle room")
	}
}

// CloseAll cancels every room and empties the table. The manager is done
// after this; subsequent admissions fail with ErrRoomClosed.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	count := len(m.rooms)
	for _, cancel := range m.cancels {
		cancel()
	}
	m.rooms = make(map[string]*Room)
	m.cancels = make(map[string]context.CancelFunc)
	m.mu.Unlock()

	m.stopAll()

	metrics.SetRooms(0)
	logging.Info().Int("rooms_closed", count).Msg("closed all rooms")
}
