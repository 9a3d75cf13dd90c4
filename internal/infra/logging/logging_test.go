//go:build !integration

package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"cadi-backend/internal/config"
	"cadi-backend/internal/infra/logging"
)

func TestWithContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := logging.NewWithWriter(config.LogConfig{Level: "info", Format: "json"}, false, &buf)

	ctx := logging.WithTraceID(context.Background(), "trace-1")
	ctx = logging.WithUserID(ctx, "user-1")
	logging.With(ctx, base).Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	if entry["trace_id"] != "trace-1" || entry["user_id"] != "user-1" {
		t.Errorf("expected trace_id and user_id fields, got %v", entry)
	}
	if logging.TraceID(ctx) != "trace-1" {
		t.Errorf("TraceID() = %q", logging.TraceID(ctx))
	}
}

func TestRedact(t *testing.T) {
	if got := logging.Redact("ana@uni.edu.co", false); got != "ana@...co" {
		t.Errorf("unexpected redaction %q", got)
	}
	if got := logging.Redact("short", false); got != "***" {
		t.Errorf("unexpected redaction %q", got)
	}
	if got := logging.Redact("ana@uni.edu.co", true); got != "ana@uni.edu.co" {
		t.Errorf("dev mode should not redact, got %q", got)
	}
}
