// HookSocket - WebSocket to Webhook Relay
// Copyright 2026 adshrc
// SPDX-License-Identifier: MIT
// https://github.com/adshrc/HookSocket

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"disabled", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestInitJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf, Timestamp: true})
	defer Init(DefaultConfig())

	Info().Str("key", "value").Msg("test message")

	out := buf.String()
	if !strings.Contains(out, `"level":"info"`) {
		t.Errorf("expected level field in output, got %q", out)
	}
	if !strings.Contains(out, `"key":"value"`) {
		t.Errorf("expected structured field in output, got %q", out)
	}
	if !strings.Contains(out, `"message":"test message"`) {
		t.Errorf("expected message field in output, got %q", out)
	}
}

func TestInitLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Debug().Msg("should not appear")
	Info().Msg("should not appear either")
	Warn().Msg("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("filtered levels leaked into output: %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("warn message missing from output: %q", out)
	}
}

func TestNewTestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)
	logger.Info().Msg("captured")

	if !strings.Contains(buf.String(), "captured") {
		t.Errorf("expected captured output, got %q", buf.String())
	}
}

func TestCtxAddsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	ctx := ContextWithRequestID(context.Background(), "req-123")
	ctx = ContextWithCorrelationID(ctx, "corr-456")

	Ctx(ctx).Info().Msg("with context")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-123"`) {
		t.Errorf("expected request_id in output, got %q", out)
	}
	if !strings.Contains(out, `"correlation_id":"corr-456"`) {
		t.Errorf("expected correlation_id in output, got %q", out)
	}
}

func TestCtxWithoutFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Ctx(context.Background()).Info().Msg("plain")

	out := buf.String()
	if strings.Contains(out, "request_id") || strings.Contains(out, "correlation_id") {
		t.Errorf("unexpected context fields in output: %q", out)
	}
}

func TestGenerateIDs(t *testing.T) {
	corr := GenerateCorrelationID()
	if len(corr) != 8 {
		t.Errorf("correlation ID length = %d, want 8", len(corr))
	}

	req := GenerateRequestID()
	if len(req) != 36 {
		t.Errorf("request ID length = %d, want 36 (UUID)", len(req))
	}

	if GenerateRequestID() == req {
		t.Error("consecutive request IDs should differ")
	}
}

func TestRequestIDFromContextMissing(t *testing.T) {
	if id := RequestIDFromContext(context.Background()); id != "" {
		t.Errorf("expected empty request ID, got %q", id)
	}
	if id := CorrelationIDFromContext(context.Background()); id != "" {
		t.Errorf("expected empty correlation ID, got %q", id)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	logger := WithComponent("relay")
	logger.Info().Msg("component log")

	if !strings.Contains(buf.String(), `"component":"relay"`) {
		t.Errorf("expected component field, got %q", buf.String())
	}
}

func TestSlogHandlerBridgesLevels(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	handler := NewSlogHandlerWithLogger(zl)
	slogger := slog.New(handler)

	slogger.Info("info message", "key", "value")
	slogger.Error("error message")

	out := buf.String()
	if !strings.Contains(out, `"level":"info"`) {
		t.Errorf("expected info level bridged, got %q", out)
	}
	if !strings.Contains(out, `"key":"value"`) {
		t.Errorf("expected attr bridged, got %q", out)
	}
	if !strings.Contains(out, `"level":"error"`) {
		t.Errorf("expected error level bridged, got %q", out)
	}
}

func TestSlogHandlerWithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	handler := NewSlogHandlerWithLogger(zl)

	withAttrs := handler.WithAttrs([]slog.Attr{slog.String("service", "relay")})
	slog.New(withAttrs).Info("attributed")

	if !strings.Contains(buf.String(), `"service":"relay"`) {
		t.Errorf("expected pre-configured attr, got %q", buf.String())
	}

	buf.Reset()
	grouped := handler.WithGroup("http")
	slog.New(grouped).Info("grouped", "status", int64(200))

	if !strings.Contains(buf.String(), `"http.status":200`) {
		t.Errorf("expected group-prefixed key, got %q", buf.String())
	}
}

func TestSlogHandlerEnabled(t *testing.T) {
	zl := zerolog.New(nil).Level(zerolog.WarnLevel)
	handler := NewSlogHandlerWithLogger(zl)

	if handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled at warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}
