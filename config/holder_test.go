package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/creditgate/creditgate/config"
)

func TestHolder_GetAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creditgate.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder failed: %v", err)
	}
	defer h.Stop()

	if h.Get().Logging.Level != "info" {
		t.Errorf("Level = %q, want info", h.Get().Logging.Level)
	}

	var notified *config.Config
	h.OnChange(func(cfg *config.Config) {
		notified = cfg
	})

	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if h.Get().Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug after reload", h.Get().Logging.Level)
	}
	if notified == nil || notified.Logging.Level != "debug" {
		t.Error("OnChange listener not notified with new config")
	}
}

func TestHolder_ReloadKeepsOldConfigOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creditgate.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Stop()

	// Break the file
	if err := os.WriteFile(path, []byte("logging:\n  level: bogus\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := h.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	if h.Get().Logging.Level != "info" {
		t.Errorf("Level = %q, old config must survive a failed reload", h.Get().Logging.Level)
	}
}
