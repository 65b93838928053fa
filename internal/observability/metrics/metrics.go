// Package metrics exposes Prometheus instrumentation for the portal.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the portal's Prometheus collectors.
type Metrics struct {
	ProbeRuns      *prometheus.CounterVec
	ProbeResults   *prometheus.CounterVec
	InstallEvents  *prometheus.CounterVec
	SSEConnections prometheus.Gauge
}

// New creates and registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ProbeRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "examportal",
			Subsystem: "diagnostics",
			Name:      "probe_runs_total",
			Help:      "Capability probe suite runs by verdict.",
		}, []string{"verdict"}),
		ProbeResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "examportal",
			Subsystem: "diagnostics",
			Name:      "probe_results_total",
			Help:      "Individual probe outcomes.",
		}, []string{"probe", "outcome"}),
		InstallEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "examportal",
			Subsystem: "install",
			Name:      "prompt_events_total",
			Help:      "Install prompt lifecycle events.",
		}, []string{"event"}),
		SSEConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "examportal",
			Subsystem: "api",
			Name:      "sse_connections",
			Help:      "Currently open install prompt SSE connections.",
		}),
	}
	reg.MustRegister(m.ProbeRuns, m.ProbeResults, m.InstallEvents, m.SSEConnections)
	return m
}

// RecordReport counts a suite run and its per-probe outcomes.
func (m *Metrics) RecordReport(verdict string, results map[string]bool) {
	m.ProbeRuns.WithLabelValues(verdict).Inc()
	for probe, passed := range results {
		outcome := "fail"
		if passed {
			outcome = "pass"
		}
		m.ProbeResults.WithLabelValues(probe, outcome).Inc()
	}
}
