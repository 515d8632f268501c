// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package services

import (
	"context"
)

// RoomManager matches *relay.Manager's Run method. The interface keeps
// this package free of a relay import and lets tests substitute a mock.
type RoomManager interface {
	Run(ctx context.Context) error
}

// RelayManagerService wraps the relay room manager as a supervised
// service. Manager.Run already follows the suture.Service pattern, so
// the wrapper only delegates and provides a name for logging.
//
// Example usage:
//
//	manager := relay.NewManager(opts)
//	svc := services.NewRelayManagerService(manager)
//	tree.AddRelayService(svc)
type RelayManagerService struct {
	manager RoomManager
	name    string
}

// NewRelayManagerService creates a new room manager service wrapper.
func NewRelayManagerService(manager RoomManager) *RelayManagerService {
	return &RelayManagerService{
		manager: manager,
		name:    "relay-manager",
	}
}

// Serve implements suture.Service.
//
// Manager.Run prunes idle rooms until the context is canceled, then
// closes every room and its sockets before returning ctx.Err().
func (r *RelayManagerService) Serve(ctx context.Context) error {
	return r.manager.Run(ctx)
}

// String implements fmt.Stringer; suture uses it in event logs.
func (r *RelayManagerService) String() string {
	return r.name
}
