package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "cryptotax.log")
	log, closer, err := newLogger(&buf, path, "info", false)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	log.Debug().Msg("hidden")
	log.Info().Str("asset", "BTC").Msg("shown")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("want a single JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "shown" || entry["asset"] != "BTC" || entry["level"] != "info" {
		t.Errorf("entry = %v", entry)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, buf.Bytes()) {
		t.Errorf("log file = %q, want %q", data, buf.String())
	}
}

func TestNewLogger_Pretty(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := newLogger(&buf, "", "", true)
	if err != nil {
		t.Fatal(err)
	}
	log.Info().Msg("below default level")
	log.Warn().Msg("careful")
	out := buf.String()
	if strings.Contains(out, "below default level") {
		t.Errorf("info logged at the default warn level: %q", out)
	}
	if !strings.Contains(out, "careful") || strings.HasPrefix(out, "{") {
		t.Errorf("want a console formatted warning, got %q", out)
	}
}
