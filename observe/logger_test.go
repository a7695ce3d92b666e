package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to parse log line as JSON: %v\nLine: %s", err, line)
		}
		out = append(out, entry)
	}
	return out
}

func TestLogger_IncludesHostFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.WithHost(HostMeta{Host: "web01", Index: 3, Profile: "quick"}).Info(context.Background(), "host finished")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e["host"] != "web01" {
		t.Errorf("host = %v, want web01", e["host"])
	}
	if e["host.index"] != float64(3) {
		t.Errorf("host.index = %v, want 3", e["host.index"])
	}
	if e["profile"] != "quick" {
		t.Errorf("profile = %v, want quick", e["profile"])
	}
	if e["msg"] != "host finished" || e["level"] != "info" {
		t.Errorf("entry = %v", e)
	}
	if _, ok := e["timestamp"].(string); !ok {
		t.Errorf("timestamp missing: %v", e)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level string
		want  int
	}{
		{"debug", 4},
		{"info", 3},
		{"warn", 2},
		{"error", 1},
		{"", 3},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter(tt.level, &buf)
			ctx := context.Background()

			logger.Debug(ctx, "d")
			logger.Info(ctx, "i")
			logger.Warn(ctx, "w")
			logger.Error(ctx, "e")

			if got := len(decodeLines(t, &buf)); got != tt.want {
				t.Errorf("level %q wrote %d entries, want %d", tt.level, got, tt.want)
			}
		})
	}
}

func TestLogger_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "remote configured",
		F("token", "eyJhbGciOi"),
		F("Signing_Key", "s3cret"),
		F("endpoint", "https://web01:5986"),
	)

	e := decodeLines(t, &buf)[0]
	if e["token"] != "[REDACTED]" {
		t.Errorf("token = %v, want redacted", e["token"])
	}
	if e["Signing_Key"] != "[REDACTED]" {
		t.Errorf("Signing_Key = %v, want redacted", e["Signing_Key"])
	}
	if e["endpoint"] != "https://web01:5986" {
		t.Errorf("endpoint = %v", e["endpoint"])
	}
}

func TestLogger_ErrorValuesAreStrings(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Error(context.Background(), "check failed", F("error", errors.New("access denied")))

	e := decodeLines(t, &buf)[0]
	if e["error"] != "access denied" {
		t.Errorf("error = %v, want %q", e["error"], "access denied")
	}
}

func TestLogger_WithFieldsDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerWithWriter("info", &buf)
	scoped := base.With(F("run_id", "abc"))

	scoped.Info(context.Background(), "scoped")
	base.Info(context.Background(), "base")

	entries := decodeLines(t, &buf)
	if entries[0]["run_id"] != "abc" {
		t.Errorf("scoped entry run_id = %v", entries[0]["run_id"])
	}
	if _, ok := entries[1]["run_id"]; ok {
		t.Error("base logger picked up derived field")
	}
}

func TestLogger_ConcurrentLinesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerWithWriter("info", &buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l := base.WithHost(HostMeta{Host: "h", Index: i})
			for j := 0; j < 10; j++ {
				l.Info(context.Background(), "tick")
			}
		}(i)
	}
	wg.Wait()

	if got := len(decodeLines(t, &buf)); got != 200 {
		t.Errorf("got %d entries, want 200", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"verbose", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	l := NopLogger()
	l.Info(context.Background(), "ignored")
	if l.WithHost(HostMeta{Host: "h"}) == nil || l.With(F("k", "v")) == nil {
		t.Fatal("NopLogger derived loggers should be non-nil")
	}
}
