// Package http provides the HTTP surface of the gateway: the admission
// pipeline, the protected and public handlers, and the router.
package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/creditgate/creditgate/adapters/metrics"
	"github.com/creditgate/creditgate/app"
	"github.com/creditgate/creditgate/domain/credit"
	"github.com/creditgate/creditgate/domain/usage"
	"github.com/creditgate/creditgate/ports"
)

// DefaultAllowPaths are the path prefixes that bypass the credit gate.
var DefaultAllowPaths = []string{"/health", "/docs", "/redoc", "/openapi.json", "/metrics"}

// Pipeline is the admission middleware: every request either matches the
// allow-list or pays one credit to proceed.
type Pipeline struct {
	gate     *app.GateService
	recorder ports.UsageRecorder
	logger   zerolog.Logger
	metrics  *metrics.Collector

	allow atomic.Pointer[[]string]
}

// NewPipeline creates the admission pipeline. A nil metrics collector disables
// instrumentation; allowPaths nil falls back to DefaultAllowPaths.
func NewPipeline(gate *app.GateService, recorder ports.UsageRecorder, logger zerolog.Logger, m *metrics.Collector, allowPaths []string) *Pipeline {
	p := &Pipeline{
		gate:     gate,
		recorder: recorder,
		logger:   logger,
		metrics:  m,
	}
	if allowPaths == nil {
		allowPaths = DefaultAllowPaths
	}
	p.SetAllowPaths(allowPaths)
	return p
}

// SetAllowPaths swaps the allow-list. Safe to call while serving; config hot
// reload uses this.
func (p *Pipeline) SetAllowPaths(paths []string) {
	cp := make([]string, len(paths))
	copy(cp, paths)
	p.allow.Store(&cp)
}

// Allowed reports whether the path bypasses the gate. Prefix match, so
// "/docs" also admits "/docs/index.html".
func (p *Pipeline) Allowed(path string) bool {
	for _, prefix := range *p.allow.Load() {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware returns the chi middleware enforcing admission. It runs before
// routing, so unmatched paths are charged like any other protected request.
func (p *Pipeline) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p.Allowed(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			key := credit.ExtractKey(r.Header.Get("X-API-Key"), r.Header.Get("Authorization"))
			decision := p.gate.Authorize(r.Context(), key)
			p.countDecision(decision)

			if decision.State != credit.StateAuthorized {
				p.logger.Debug().
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Int("status", decision.Status()).
					Msg("request rejected by credit gate")
				writeError(w, decision.Status(), decision.Message())
				return
			}

			acct := decision.Account
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(WithAccount(r.Context(), acct)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			// The credit is already spent; bookkeeping happens off the
			// response path and must not observe the request's cancellation.
			p.recorder.Record(usage.Call{
				AccountID:  acct.ID,
				Path:       r.URL.Path,
				Method:     r.Method,
				StatusCode: status,
				LatencyMs:  time.Since(start).Milliseconds(),
			})
			if p.metrics != nil {
				p.metrics.CreditsSpent.Add(float64(usage.CreditsPerRequest))
				p.metrics.UsageRecorded.Inc()
			}
		})
	}
}

func (p *Pipeline) countDecision(d credit.Decision) {
	if p.metrics == nil {
		return
	}
	switch d.State {
	case credit.StateAuthorized:
		p.metrics.GateDecisions.WithLabelValues("authorized").Inc()
	case credit.StateUnauthenticated:
		p.metrics.GateDecisions.WithLabelValues("unauthenticated").Inc()
	default:
		p.metrics.GateDecisions.WithLabelValues(string(d.Reason)).Inc()
	}
}

// writeError writes the flat JSON error body shared by all gate rejections.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// NewLoggingMiddleware logs HTTP requests.
func NewLoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			// Skip logging for health checks and metrics
			if strings.HasPrefix(r.URL.Path, "/health") || r.URL.Path == "/metrics" {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}

// NewMetricsMiddleware instruments requests with the Prometheus collector.
func NewMetricsMiddleware(m *metrics.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := strconv.Itoa(ww.Status())
			m.RequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			m.RequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
		})
	}
}
