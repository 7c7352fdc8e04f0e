package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	// Test development mode
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize development logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}

	// Test production mode
	err = Init()
	if err != nil {
		t.Fatalf("failed to initialize production logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger = Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}
}

// Basic logging test (slog-backed; no Sugar)
func TestLoggerBasic(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil")
	}

	ctx := context.Background()
	logger.Info(ctx, "test message", String("k", "v"))
}

func TestLoggerNamed(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	namedLogger := Named("test")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}

	ctx := context.Background()
	namedLogger.Info(ctx, "test message")
}

func TestLoggerFormats(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")

	for _, format := range []string{FormatText, FormatJSON, FormatPretty} {
		var buf bytes.Buffer
		if err := Init(WithFormat(format), WithOutput(&buf), WithAttrs(String("app", "analytics"))); err != nil {
			t.Fatalf("%s: init: %v", format, err)
		}
		Get().Info(ctx, "query served", Int("points", 48))

		out := buf.String()
		for _, want := range []string{"query served", "req-42", "analytics", "48"} {
			if !strings.Contains(out, want) {
				t.Errorf("%s: expected %q in output %q", format, want, out)
			}
		}
	}

	if err := Init(WithFormat("xml")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestLoggerJSONFields(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithFormat(FormatJSON), WithOutput(&buf)); err != nil {
		t.Fatalf("init: %v", err)
	}
	Get().Warn(context.Background(), "slow query", String("field", "field1"), Error(errors.New("boom")))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if rec["level"] != "WARN" || rec["field"] != "field1" || rec["error"] != "boom" {
		t.Errorf("unexpected record %v", rec)
	}
	if _, ok := rec["request_id"]; ok {
		t.Error("request_id should be absent without one in context")
	}
	if src, _ := rec["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("expected caller source, got %q", src)
	}
}

func TestSetLevelString(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithOutput(&buf)); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer SetLevel(slog.LevelInfo)

	if err := SetLevelString("WARN"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	Get().Info(context.Background(), "hidden")
	Get().Error(context.Background(), "shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("level filter not applied: %q", buf.String())
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}
