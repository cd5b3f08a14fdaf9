package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// capture points the global logger at a buffer for the duration of f.
func capture(t *testing.T, level Level, format Format, f func()) string {
	t.Helper()
	var buf bytes.Buffer
	InitLoggerTo(&buf, level, format)
	defer InitLogger(LevelInfo, FormatText)
	f()
	return buf.String()
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, err %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %v, %v", f, err)
	}
	if f, err := ParseFormat("text"); err != nil || f != FormatText {
		t.Errorf("ParseFormat(text) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml): want error")
	}
}

func TestInitLoggerJSON(t *testing.T) {
	out := capture(t, LevelInfo, FormatJSON, func() {
		Info("hello", "key", "value")
		Debug("hidden")
	})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1 (debug filtered): %q", len(lines), out)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal %q: %v", lines[0], err)
	}
	if entry["msg"] != "hello" || entry["key"] != "value" {
		t.Errorf("entry = %v", entry)
	}
	ts, _ := entry["time"].(string)
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("time %q is not RFC3339: %v", ts, err)
	}
}

func TestLoggerFromContext(t *testing.T) {
	ctx := WithRunID(WithRequestID(context.Background(), "req-1"), "run-1")
	if GetRequestID(ctx) != "req-1" || GetRunID(ctx) != "run-1" {
		t.Fatalf("context ids = %q, %q", GetRequestID(ctx), GetRunID(ctx))
	}
	out := capture(t, LevelDebug, FormatText, func() {
		SectionFailed(ctx, "http://example/1", errors.New("boom"), "line", 3)
	})
	for _, want := range []string{"section_failed", "request_id=req-1", "run_id=run-1", "error=boom", "line=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q lacks %q", out, want)
		}
	}
}

func TestCombinedMiddleware(t *testing.T) {
	var seen string
	h := CombinedMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	out := capture(t, LevelInfo, FormatJSON, func() {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		if rec.Header().Get("X-Request-ID") != seen || seen == "" {
			t.Errorf("X-Request-ID = %q, handler saw %q", rec.Header().Get("X-Request-ID"), seen)
		}
	})
	if !strings.Contains(out, `"status_code":418`) || !strings.Contains(out, `"path":"/api/health"`) {
		t.Errorf("request log = %q", out)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given")
	capture(t, LevelError, FormatText, func() {
		h.ServeHTTP(httptest.NewRecorder(), req)
	})
	if seen != "given" {
		t.Errorf("request id = %q, want the incoming header", seen)
	}
}

func TestLevelHelpers(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-2")
	out := capture(t, LevelWarn, FormatText, func() {
		Debug("hidden debug")
		Info("hidden info")
		Warn("some files failed", "failed", 1)
		ErrorContext(ctx, "analysis failed")
	})
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below warn were logged: %q", out)
	}
	for _, want := range []string{"level=WARN", "failed=1", "level=ERROR", "run_id=run-2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q lacks %q", out, want)
		}
	}
}
