package bootstrap_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/creditgate/creditgate/bootstrap"
	"github.com/creditgate/creditgate/config"
	"github.com/creditgate/creditgate/domain/credit"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         0,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    filepath.Join(t.TempDir(), "test.db"),
		},
		Gate:     config.GateConfig{AllowPaths: config.DefaultAllowPaths},
		Recorder: config.RecorderConfig{QueueSize: 16},
		Logging:  config.LoggingConfig{Level: "error", Format: "json"},
		// Metrics stay disabled: metrics.New registers on the global
		// Prometheus registry, which tests must not share.
		Metrics: config.MetricsConfig{Enabled: false, Path: "/metrics"},
		Docs:    config.DocsConfig{Enabled: false},
	}
}

func TestNew_WiresApplication(t *testing.T) {
	app, err := bootstrap.New(testConfig(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer app.Shutdown()

	if app.DB == nil || app.HTTPServer == nil || app.Gate == nil {
		t.Fatal("application not fully wired")
	}

	// The wired stores hit the migrated schema end to end.
	ctx := context.Background()
	now := time.Now().UTC()
	err = app.Accounts.Create(ctx, credit.Account{
		ID:        "acct-1",
		Email:     "dev@example.com",
		APIKey:    "ck_test",
		Credits:   2,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("create account through wired store: %v", err)
	}

	d := app.Gate.Authorize(ctx, "ck_test")
	if d.State != credit.StateAuthorized {
		t.Fatalf("decision = %+v, want authorized", d)
	}
	if d.Account.Credits != 1 {
		t.Errorf("balance = %d, want 1", d.Account.Credits)
	}
}

func TestShutdown_Idempotent(t *testing.T) {
	app, err := bootstrap.New(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}

	if err := app.Shutdown(); err != nil {
		t.Fatalf("first shutdown: %v", err)
	}
	// A second shutdown must not panic or error.
	if err := app.Shutdown(); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
}
