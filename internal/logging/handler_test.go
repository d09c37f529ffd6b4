package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/ocms-core/internal/localization"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestContextHandler_AddsRequestAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(New(&buf, FormatJSON, slog.LevelInfo))

	ctx := context.WithValue(context.Background(), chimw.RequestIDKey, "req-123")
	ctx = localization.WithLocale(ctx, "nl")

	logger.InfoContext(ctx, "page served", "slug", "home")

	entry := decodeLine(t, &buf)
	if entry["request_id"] != "req-123" {
		t.Errorf("request_id = %v, want req-123", entry["request_id"])
	}
	if entry["locale"] != "nl" {
		t.Errorf("locale = %v, want nl", entry["locale"])
	}
	if entry["slug"] != "home" {
		t.Errorf("slug = %v, want home", entry["slug"])
	}
}

func TestContextHandler_NoContextValues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(New(&buf, FormatJSON, slog.LevelInfo))

	logger.Info("startup")

	entry := decodeLine(t, &buf)
	if _, ok := entry["request_id"]; ok {
		t.Error("unexpected request_id attribute")
	}
	if _, ok := entry["locale"]; ok {
		t.Error("unexpected locale attribute")
	}
}

func TestContextHandler_LevelAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(New(&buf, FormatJSON, slog.LevelWarn))

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}

	logger.With("component", "imaging").WithGroup("transform").Warn("slow", "ms", 120)
	entry := decodeLine(t, &buf)
	if entry["component"] != "imaging" {
		t.Errorf("component = %v", entry["component"])
	}
	group, ok := entry["transform"].(map[string]any)
	if !ok || group["ms"] != float64(120) {
		t.Errorf("transform group = %v", entry["transform"])
	}
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(New(&buf, FormatConsole, slog.LevelDebug))

	logger.Debug("hello", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "hello") || !strings.Contains(out, "key") {
		t.Errorf("console output missing fields: %q", out)
	}
}
