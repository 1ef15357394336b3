// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Evaluation loop metrics
	CyclesTotal        prometheus.Counter
	MarketsEvaluated   *prometheus.CounterVec
	DecisionsTotal     *prometheus.CounterVec
	EvaluationDuration *prometheus.HistogramVec

	// Trading metrics
	EntriesTotal  *prometheus.CounterVec
	ExitsTotal    *prometheus.CounterVec
	TotalPnlUsd   prometheus.Gauge
	ExposureUsd   prometheus.Gauge
	OpenPositions prometheus.Gauge
	ModelEdge     *prometheus.GaugeVec

	// Provider metrics
	ProviderErrors  *prometheus.CounterVec
	ProviderLatency *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulCycle prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "updown_bot"
	}

	return &Metrics{
		CyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "cycles_total",
			Help:      "Total number of evaluation cycles completed",
		}),
		MarketsEvaluated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "markets_evaluated_total",
			Help:      "Total number of per-market evaluations by asset",
		}, []string{"asset"}),
		DecisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "decisions_total",
			Help:      "Total number of decisions by action and phase",
		}, []string{"action", "phase"}),
		EvaluationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "evaluation_duration_seconds",
			Help:      "Duration of a single market evaluation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"asset"}),

		EntriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "entries_total",
			Help:      "Total number of recorded position entries by side",
		}, []string{"side"}),
		ExitsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "exits_total",
			Help:      "Total number of recorded position exits by outcome",
		}, []string{"outcome"}),
		TotalPnlUsd: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "total_pnl_usd",
			Help:      "Realized session PnL in dollars",
		}),
		ExposureUsd: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "exposure_usd",
			Help:      "Dollar cost of all open positions",
		}),
		OpenPositions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "open_positions",
			Help:      "Number of open positions",
		}),
		ModelEdge: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "model_edge",
			Help:      "Latest model-vs-market edge by asset",
		}, []string{"asset"}),

		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "errors_total",
			Help:      "Total number of provider failures by provider",
		}, []string{"provider"}),
		ProviderLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Duration of provider requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),

		LastSuccessfulCycle: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix timestamp of last completed evaluation cycle",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
