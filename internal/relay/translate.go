// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package relay

import (
	"strings"
)

// PrefixPair maps a socket-side path prefix to its webhook-side counterpart.
// A connection upgraded on {Socket}<id> forwards to {Webhook}<id>.
type PrefixPair struct {
	Socket  string
	Webhook string
}

// Translator rewrites socket-side request paths into webhook-side forward
// paths. It is pure and safe for concurrent use.
type Translator struct {
	pairs []PrefixPair
}

// NewTranslator builds a Translator from the default and test prefix pairs.
// The test pair is matched first so a test prefix that shares a leading
// substring with the default prefix (e.g. /websocket-test/ vs /websocket/)
// is never misclassified. Pairs with an empty socket prefix are skipped:
// strings.HasPrefix(path, "") matches everything.
func NewTranslator(def, test PrefixPair) *Translator {
	pairs := make([]PrefixPair, 0, 2)
	for _, p := range []PrefixPair{test, def} {
		if p.Socket == "" {
			continue
		}
		pairs = append(pairs, p)
	}
	return &Translator{pairs: pairs}
}

// Translate maps a socket-side path to the webhook-side path it forwards
// to, preserving everything after the matched prefix. Returns a
// *PathTranslationError when no configured socket prefix matches.
func (t *Translator) Translate(path string) (string, error) {
	for _, p := range t.pairs {
		if strings.HasPrefix(path, p.Socket) {
			return p.Webhook + strings.TrimPrefix(path, p.Socket), nil
		}
	}
	return "", &PathTranslationError{Path: path}
}
