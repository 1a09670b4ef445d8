package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LavaJover/shvark-tron-gateway/internal/config"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "gateway.log")
	log, err := New(config.LogConfig{LogLevel: "info", LogFormat: "json", LogOutput: path})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	log.Debug("hidden")
	log.Info("order created")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the info line, got %d lines: %s", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected json line, got %q", lines[0])
	}
	if entry["msg"] != "order created" {
		t.Fatalf("unexpected msg %v", entry["msg"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Fatalf("expected timestamp key in %v", entry)
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	t.Parallel()

	if _, err := New(config.LogConfig{LogLevel: "loud", LogFormat: "json"}); err == nil {
		t.Fatalf("expected invalid level to fail")
	}
	if _, err := New(config.LogConfig{LogLevel: "info", LogFormat: "xml"}); err == nil {
		t.Fatalf("expected invalid format to fail")
	}
}
