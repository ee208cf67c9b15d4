package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewWritesTaggedJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Service: "papertrade", Module: "session", Level: "debug", Writer: &buf})

	log.Debug("order filled", "symbol", "AAPL")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v: %q", err, buf.String())
	}
	if _, ok := line["timestamp"]; !ok {
		t.Errorf("time key not renamed: %v", line)
	}
	if _, ok := line["time"]; ok {
		t.Errorf("time key still present: %v", line)
	}
	if line["service"] != "papertrade" || line["module"] != "session" || line["symbol"] != "AAPL" {
		t.Errorf("missing attributes: %v", line)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Writer: &buf})
	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info written at warn level: %q", buf.String())
	}
	log.Warn("kept")
	if buf.Len() == 0 {
		t.Fatal("warn not written")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
