// Package metrics exposes sync counters and run durations to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"commerce-sync/core/reconcile"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the sync collectors and the registry they live in.
// It implements reconcile.Observer.
type Metrics struct {
	registry *prometheus.Registry

	records     *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	transitions *prometheus.CounterVec
	runs        *prometheus.CounterVec
	duration    prometheus.Histogram
}

// New registers the collectors in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "commerce_sync",
			Name:      "records_reconciled_total",
			Help:      "Records reconciled into the local store, by kind.",
		}, []string{"kind"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "commerce_sync",
			Name:      "records_skipped_total",
			Help:      "Malformed records skipped, by kind.",
		}, []string{"kind"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "commerce_sync",
			Name:      "state_transitions_total",
			Help:      "Sync state machine transitions, by target state.",
		}, []string{"state"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "commerce_sync",
			Name:      "runs_total",
			Help:      "Finished sync runs, by status.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "commerce_sync",
			Name:      "run_duration_seconds",
			Help:      "Wall time of sync runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
	}

	m.registry.MustRegister(
		m.records, m.skipped, m.transitions, m.runs, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Transition counts a state change.
func (m *Metrics) Transition(_ string, _, to reconcile.State) {
	m.transitions.WithLabelValues(string(to)).Inc()
}

// Reconciled counts a reconciled record.
func (m *Metrics) Reconciled(_ string, kind reconcile.Kind) {
	m.records.WithLabelValues(string(kind)).Inc()
}

// Skipped counts a skipped record.
func (m *Metrics) Skipped(_ string, kind reconcile.Kind, _ error) {
	m.skipped.WithLabelValues(string(kind)).Inc()
}

// ObserveRun records the outcome and duration of a finished run.
func (m *Metrics) ObserveRun(status string, elapsed time.Duration) {
	m.runs.WithLabelValues(status).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// Registry exposes the registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
