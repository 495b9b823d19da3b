// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/creditgate/creditgate/adapters/clock"
	gatehttp "github.com/creditgate/creditgate/adapters/http"
	"github.com/creditgate/creditgate/adapters/idgen"
	"github.com/creditgate/creditgate/adapters/metrics"
	"github.com/creditgate/creditgate/adapters/sqlite"
	"github.com/creditgate/creditgate/app"
	"github.com/creditgate/creditgate/config"
	"github.com/creditgate/creditgate/ports"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector

	// Services
	Gate     *app.GateService
	Accounts ports.AccountStore
	Usage    ports.UsageStore

	// For cleanup and hot reload
	recorder ports.UsageRecorder
	pipeline *gatehttp.Pipeline
	holder   *config.Holder
}

// New creates and initializes the application from a loaded configuration.
func New(cfg *config.Config) (*App, error) {
	logger := setupLogger(cfg.Logging)

	logger.Info().Msg("initializing creditgate")

	a := &App{
		Logger: logger,
		Config: cfg,
	}

	if err := a.initDatabase(); err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		logger.Info().Msg("prometheus metrics enabled")
	}

	a.initServices()
	a.initHTTPServer()

	return a, nil
}

// NewWithHotReload creates the application and attaches a config holder so
// that file changes and SIGHUP update the reloadable settings in place.
func NewWithHotReload(path string) (*App, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	a, err := New(cfg)
	if err != nil {
		return nil, err
	}

	holder, err := config.NewHolder(path, a.Logger)
	if err != nil {
		a.Shutdown()
		return nil, err
	}
	a.holder = holder

	holder.OnChange(func(cfg *config.Config) {
		a.applyReload(cfg)
	})
	if err := holder.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config file watch unavailable")
	}
	holder.WatchSignals()

	return a, nil
}

func (a *App) initDatabase() error {
	db, err := sqlite.Open(a.Config.Database.DSN)
	if err != nil {
		return err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return fmt.Errorf("migrate: %w", err)
	}
	a.DB = db
	a.Logger.Info().Str("dsn", a.Config.Database.DSN).Msg("database ready")
	return nil
}

func (a *App) initServices() {
	clk := clock.Real{}
	ids := idgen.UUID{}

	a.Accounts = sqlite.NewAccountStore(a.DB, clk)
	catalogStore := sqlite.NewCatalogStore(a.DB)
	a.Usage = sqlite.NewUsageStore(a.DB)

	a.Gate = app.NewGateService(a.Accounts, a.Logger)
	a.recorder = app.NewRecorderService(app.RecorderDeps{
		Catalog: catalogStore,
		Usage:   a.Usage,
		Clock:   clk,
		IDGen:   ids,
		Logger:  a.Logger,
	}, a.Config.Recorder.QueueSize)
}

func (a *App) initHTTPServer() {
	a.pipeline = gatehttp.NewPipeline(a.Gate, a.recorder, a.Logger, a.Metrics, a.Config.Gate.AllowPaths)
	api := gatehttp.NewAPIHandler(a.Logger)

	router := gatehttp.NewRouter(a.pipeline, api, a.Logger, gatehttp.RouterConfig{
		Metrics:     a.Metrics,
		MetricsPath: a.Config.Metrics.Path,
		EnableDocs:  a.Config.Docs.Enabled,
		Timeout:     a.Config.Server.WriteTimeout,
	})

	a.HTTPServer = &http.Server{
		Addr:         a.Config.Server.Addr(),
		Handler:      router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
}

// applyReload applies the reloadable subset of a new configuration.
func (a *App) applyReload(cfg *config.Config) {
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	a.pipeline.SetAllowPaths(cfg.Gate.AllowPaths)

	if a.Metrics != nil {
		a.Metrics.ConfigReloads.Inc()
	}
}

// Run starts the HTTP server and blocks until interrupt or server error.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server first so no new calls reach the recorder
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	// Drain pending usage records
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("usage recorder close error")
		}
	}

	if a.holder != nil {
		a.holder.Stop()
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
