package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/creditgate/creditgate/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "creditgate.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "creditgate.db" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Recorder.QueueSize != 1024 {
		t.Errorf("QueueSize = %d, want 1024", cfg.Recorder.QueueSize)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}

	wantAllow := strings.Join(config.DefaultAllowPaths, ",")
	if got := strings.Join(cfg.Gate.AllowPaths, ","); got != wantAllow {
		t.Errorf("AllowPaths = %q, want %q", got, wantAllow)
	}
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 8081
  read_timeout: 10s
  write_timeout: 20s
database:
  driver: sqlite
  dsn: /tmp/gate.db
gate:
  allow_paths:
    - /health
    - /status
recorder:
  queue_size: 256
logging:
  level: debug
  format: console
metrics:
  enabled: true
  path: /internal/metrics
docs:
  enabled: true
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr() != "127.0.0.1:8081" {
		t.Errorf("Addr = %q", cfg.Server.Addr())
	}
	if cfg.Server.WriteTimeout != 20*time.Second {
		t.Errorf("WriteTimeout = %v", cfg.Server.WriteTimeout)
	}
	if cfg.Database.DSN != "/tmp/gate.db" {
		t.Errorf("DSN = %q", cfg.Database.DSN)
	}
	if len(cfg.Gate.AllowPaths) != 2 || cfg.Gate.AllowPaths[1] != "/status" {
		t.Errorf("AllowPaths = %v", cfg.Gate.AllowPaths)
	}
	if cfg.Recorder.QueueSize != 256 {
		t.Errorf("QueueSize = %d", cfg.Recorder.QueueSize)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/internal/metrics" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if !cfg.Docs.Enabled {
		t.Error("Docs should be enabled")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CREDITGATE_SERVER_PORT", "7070")
	t.Setenv("CREDITGATE_LOG_LEVEL", "debug")
	t.Setenv("CREDITGATE_GATE_ALLOW_PATHS", "/health, /ping")

	path := writeConfig(t, "server:\n  port: 9090\nlogging:\n  level: warn\n")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
	if len(cfg.Gate.AllowPaths) != 2 || cfg.Gate.AllowPaths[1] != "/ping" {
		t.Errorf("AllowPaths = %v", cfg.Gate.AllowPaths)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CREDITGATE_DATABASE_DSN", "/data/gate.db")
	t.Setenv("CREDITGATE_METRICS_ENABLED", "yes")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.Database.DSN != "/data/gate.db" {
		t.Errorf("DSN = %q", cfg.Database.DSN)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics should be enabled via env")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad driver", "database:\n  driver: postgres\n"},
		{"bad log level", "logging:\n  level: verbose\n"},
		{"bad log format", "logging:\n  format: xml\n"},
		{"allow path without slash", "gate:\n  allow_paths:\n    - health\n"},
		{"negative queue", "recorder:\n  queue_size: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.yaml)
			if _, err := config.Load(path); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
