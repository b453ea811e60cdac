package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Errorf("Expected info to be filtered at warn level, got %q", buf.String())
	}

	log.Warn().Str("component", "test").Msg("kept")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to decode log line: %v", err)
	}
	if entry["message"] != "kept" || entry["component"] != "test" || entry["level"] != "warn" {
		t.Errorf("Unexpected log entry %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("Expected a timestamp field")
	}
}

func TestLevelFallback(t *testing.T) {
	log := NewWithWriter(&bytes.Buffer{}, "verbose")
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("Expected info level for an unknown name, got %s", log.GetLevel())
	}
}
