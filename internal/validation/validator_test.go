// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package validation

import (
	"strings"
	"testing"
)

type testPathConfig struct {
	SocketPath  string `validate:"required,startswith=/"`
	WebhookPath string `validate:"required,startswith=/"`
	LogFormat   string `validate:"omitempty,oneof=json console"`
	Port        int    `validate:"min=1,max=65535"`
}

func TestValidateStructValid(t *testing.T) {
	cfg := testPathConfig{
		SocketPath:  "/websocket/",
		WebhookPath: "/webhook/",
		LogFormat:   "json",
		Port:        3000,
	}

	if err := ValidateStruct(&cfg); err != nil {
		t.Errorf("expected valid struct, got %v", err)
	}
}

func TestValidateStructMissingRequired(t *testing.T) {
	cfg := testPathConfig{WebhookPath: "/webhook/", Port: 3000}

	err := ValidateStruct(&cfg)
	if err == nil {
		t.Fatal("expected validation error for missing SocketPath")
	}

	errs := err.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), err)
	}
	if errs[0].Field() != "SocketPath" {
		t.Errorf("expected SocketPath error, got %s", errs[0].Field())
	}
	if errs[0].Tag() != "required" {
		t.Errorf("expected required tag, got %s", errs[0].Tag())
	}
	if !strings.Contains(errs[0].Error(), "is required") {
		t.Errorf("unexpected message: %s", errs[0].Error())
	}
}

func TestValidateStructStartswith(t *testing.T) {
	cfg := testPathConfig{
		SocketPath:  "websocket/",
		WebhookPath: "/webhook/",
		Port:        3000,
	}

	err := ValidateStruct(&cfg)
	if err == nil {
		t.Fatal("expected validation error for prefix without leading slash")
	}
	if !strings.Contains(err.Error(), "must start with /") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestValidateStructOneof(t *testing.T) {
	cfg := testPathConfig{
		SocketPath:  "/websocket/",
		WebhookPath: "/webhook/",
		LogFormat:   "xml",
		Port:        3000,
	}

	err := ValidateStruct(&cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid log format")
	}
	if !strings.Contains(err.Error(), "must be one of") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestValidateStructMultipleErrors(t *testing.T) {
	cfg := testPathConfig{Port: 99999}

	err := ValidateStruct(&cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}

	if len(err.Errors()) < 3 {
		t.Errorf("expected at least 3 errors, got %d: %v", len(err.Errors()), err)
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("expected combined message, got %s", err.Error())
	}
}

func TestValidateStructMaxMessage(t *testing.T) {
	cfg := testPathConfig{
		SocketPath:  "/websocket/",
		WebhookPath: "/webhook/",
		Port:        70000,
	}

	err := ValidateStruct(&cfg)
	if err == nil {
		t.Fatal("expected validation error for port out of range")
	}
	if !strings.Contains(err.Error(), "must be at most 65535") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 != v2 {
		t.Error("expected the same validator instance")
	}
}
