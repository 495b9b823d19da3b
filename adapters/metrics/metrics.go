// Package metrics provides Prometheus metrics collection for the gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for the gateway.
type Collector struct {
	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Gate metrics
	GateDecisions *prometheus.CounterVec
	CreditsSpent  prometheus.Counter

	// Recorder metrics
	UsageRecorded prometheus.Counter

	// Config metrics
	ConfigReloads prometheus.Counter
}

// New creates a new metrics collector registered on the default registry.
func New() *Collector {
	return newWith(promauto.With(prometheus.DefaultRegisterer))
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	return newWith(promauto.With(reg))
}

func newWith(factory promauto.Factory) *Collector {
	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "creditgate",
				Name:      "requests_total",
				Help:      "Total number of requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "creditgate",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "creditgate",
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),
		GateDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "creditgate",
				Name:      "gate_decisions_total",
				Help:      "Credit gate decisions by outcome",
			},
			[]string{"decision"},
		),
		CreditsSpent: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "creditgate",
				Name:      "credits_spent_total",
				Help:      "Total credits charged for authorized requests",
			},
		),
		UsageRecorded: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "creditgate",
				Name:      "usage_records_total",
				Help:      "Total usage records queued for persistence",
			},
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "creditgate",
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
	}
}
