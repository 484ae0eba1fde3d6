package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"debug", DebugConfig(), false},
		{"json format", &Config{Level: InfoLevel, Format: JSONFormat}, false},
		{"bad level", &Config{Level: "verbose", Format: TextFormat}, true},
		{"bad format", &Config{Level: InfoLevel, Format: "xml"}, true},
		{"empty", &Config{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log == nil {
		t.Fatal("expected a logger")
	}
}

func TestNewLoggerNilConfig(t *testing.T) {
	log, err := NewLogger(nil)
	if err != nil {
		t.Fatalf("nil config should select defaults: %v", err)
	}
	if log == nil {
		t.Fatal("expected a logger")
	}
}

func TestNewLoggerInvalidConfig(t *testing.T) {
	if _, err := NewLogger(&Config{Level: "loud", Format: TextFormat}); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestLoggerWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ledgermatch.log")

	log, err := NewLogger(&Config{Level: DebugLevel, Format: JSONFormat, File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	log.WithComponent("matcher").
		WithField("policy", "exact").
		WithFields(Fields{"left_records": 3}).
		Info("matching complete")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["component"] != "matcher" {
		t.Errorf("component = %v", entry["component"])
	}
	if entry["policy"] != "exact" {
		t.Errorf("policy = %v", entry["policy"])
	}
	if entry["msg"] != "matching complete" {
		t.Errorf("msg = %v", entry["msg"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "info.log")

	log, err := NewLogger(&Config{Level: InfoLevel, Format: TextFormat, File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	log.Debug("hidden")
	log.Info("visible")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Error("debug line should be filtered at info level")
	}
	if !strings.Contains(string(data), "visible") {
		t.Error("info line missing")
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.log")

	log, err := NewLogger(&Config{Level: InfoLevel, Format: JSONFormat, File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	child := log.WithField("side", "left")
	_ = child
	log.Info("plain")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if _, ok := entry["side"]; ok {
		t.Error("child field leaked into the parent logger")
	}
}

func TestGlobalLogger(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	if original == nil {
		t.Fatal("global logger should be initialized")
	}

	replacement, err := NewLogger(DebugConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	SetGlobalLogger(replacement)
	if GetGlobalLogger() != replacement {
		t.Error("SetGlobalLogger did not take effect")
	}
}
