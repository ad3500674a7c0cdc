package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the run counters, on a registry owned by the process rather
// than the global default.
type Metrics struct {
	Registry *prometheus.Registry

	Runs        *prometheus.CounterVec
	Violations  *prometheus.CounterVec
	RunDuration prometheus.Histogram
	SnippetSize prometheus.Histogram
	Sessions    prometheus.Gauge
	AuditDrops  prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taibox",
				Name:      "runs_total",
				Help:      "Snippet runs by outcome.",
			},
			[]string{"outcome"},
		),

		Violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taibox",
				Name:      "violations_total",
				Help:      "Rejected snippets by violation kind.",
			},
			[]string{"kind"},
		),

		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "taibox",
				Name:      "run_duration_seconds",
				Help:      "Wall time of snippet runs.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
		),

		SnippetSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "taibox",
				Name:      "snippet_size_bytes",
				Help:      "Size of submitted snippets.",
				Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
			},
		),

		Sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "taibox",
				Name:      "sessions",
				Help:      "Open sessions.",
			},
		),

		AuditDrops: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "taibox",
				Name:      "audit_dropped_total",
				Help:      "Audit events dropped because the buffer was full or writes kept failing.",
			},
		),
	}

	reg.MustRegister(
		m.Runs,
		m.Violations,
		m.RunDuration,
		m.SnippetSize,
		m.Sessions,
		m.AuditDrops,
	)

	return m
}

func (m *Metrics) RecordRun(outcome string, size int, duration time.Duration) {
	m.Runs.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(duration.Seconds())
	m.SnippetSize.Observe(float64(size))
}

func (m *Metrics) RecordViolation(kind string) {
	m.Violations.WithLabelValues(kind).Inc()
}
