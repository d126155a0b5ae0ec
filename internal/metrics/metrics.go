// Package metrics exposes Prometheus instrumentation for the content bot.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the run-level Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	// RunsTotal counts finished runs by outcome (ok, no_rows, nothing_ready,
	// error).
	RunsTotal *prometheus.CounterVec

	// RunDuration observes the wall time of one run_once invocation.
	RunDuration prometheus.Histogram

	// Unauthorized counts rejected run_once requests.
	Unauthorized prometheus.Counter
}

// New creates the metric set on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contentbot_runs_total",
			Help: "Total run_once invocations by outcome",
		}, []string{"outcome"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "contentbot_run_duration_seconds",
			Help:    "Wall time of one run_once invocation",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		Unauthorized: factory.NewCounter(prometheus.CounterOpts{
			Name: "contentbot_unauthorized_total",
			Help: "run_once requests rejected for a bad or missing job token",
		}),
	}
}

// ObserveRun records one finished run.
func (m *Metrics) ObserveRun(outcome string, elapsed time.Duration) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
}

// Handler returns the exposition handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
