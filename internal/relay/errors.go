// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package relay

import (
	"errors"
	"fmt"
)

// ErrRoomClosed is returned by Admit when the target room shut down between
// lookup and admission. Callers re-fetch the room and retry once; the
// Manager never hands out a closed room from its map.
var ErrRoomClosed = errors.New("relay: room closed")

// PathTranslationError indicates an inbound path matched neither configured
// socket prefix. Callers treat it as a request-level failure (HTTP 404),
// never a silent fallthrough.
type PathTranslationError struct {
	Path string
}

func (e *PathTranslationError) Error() string {
	return fmt.Sprintf("relay: path %q matches no configured socket prefix", e.Path)
}
