package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/creditgate/creditgate/adapters/metrics"
)

// RouterConfig carries the optional pieces of the HTTP surface.
type RouterConfig struct {
	Metrics     *metrics.Collector
	MetricsPath string // defaults to /metrics
	EnableDocs  bool
	Timeout     time.Duration // per-request timeout, defaults to 60s
}

// NewRouter assembles the full HTTP surface. The pipeline runs before routing,
// so requests to unknown paths are still gated and charged; only allow-listed
// prefixes bypass it.
func NewRouter(pipeline *Pipeline, api *APIHandler, logger zerolog.Logger, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	if cfg.Metrics != nil {
		r.Use(NewMetricsMiddleware(cfg.Metrics))
	}

	// Admission runs for every route registered below and for 404s alike.
	r.Use(pipeline.Middleware())

	// Public endpoints (allow-listed)
	r.Get("/health", Health)

	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.Handler())
	}

	if cfg.EnableDocs {
		r.Get("/openapi.json", OpenAPISpec)
		r.Get("/redoc", Redoc)
		r.Get("/docs/*", httpSwagger.Handler(
			httpSwagger.URL("/openapi.json"),
		))
		r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/docs/index.html", http.StatusMovedPermanently)
		})
	}

	// Protected endpoints
	r.Get("/api/v1/example", api.Example)
	r.Get("/api/v1/user/credits", api.Credits)

	return r
}
