// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package relay

import (
	"fmt"
	"mime"
	"strings"

	"github.com/goccy/go-json"
)

// SuppressionRule describes broadcast payloads that are dropped instead of
// delivered: a JSON object whose Field is a string equal to one of Values.
// This keeps workflow-engine acknowledgements (the stock n8n reply
// {"message":"Workflow was started"}) from echoing to connected clients.
// The zero rule matches nothing.
type SuppressionRule struct {
	Field  string
	Values []string
}

// Matches reports whether a decoded JSON value is a suppressed sentinel.
func (r SuppressionRule) Matches(v interface{}) bool {
	if r.Field == "" || len(r.Values) == 0 {
		return false
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return false
	}
	s, ok := obj[r.Field].(string)
	if !ok {
		return false
	}
	for _, val := range r.Values {
		if s == val {
			return true
		}
	}
	return false
}

// PrepareMessage interprets a broadcast body and decides what, if anything,
// goes out to the room.
//
// When the content type declares JSON, the body is parsed: a value matching
// the suppression rule suppresses the broadcast entirely, anything else is
// re-serialized as the outbound message. Non-JSON bodies pass through
// byte-for-byte. An empty body suppresses: there is nothing to broadcast.
//
// A body declared JSON but unparseable is an error; the external broadcast
// path answers it with HTTP 400, the forwarder path logs and drops.
func PrepareMessage(contentType string, body []byte, rule SuppressionRule) ([]byte, bool, error) {
	if len(body) == 0 {
		return nil, true, nil
	}

	if !isJSONContentType(contentType) {
		return body, false, nil
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, false, fmt.Errorf("parse JSON body: %w", err)
	}

	if rule.Matches(v) {
		return nil, true, nil
	}

	out, err := json.Marshal(v)
	if err != nil {
		return nil, false, fmt.Errorf("encode JSON body: %w", err)
	}
	return out, false, nil
}

// isJSONContentType reports whether a Content-Type header declares a JSON
// payload, including structured-syntax suffixes like application/ld+json.
func isJSONContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
