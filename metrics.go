package throttle

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for a Gate. Pass it to [NewGate] via
// [WithMetrics]; a nil *Metrics disables collection.
type Metrics struct {
	// checks counts Check calls by resource and result.
	checks *prometheus.CounterVec

	// waitHint observes the wait hints reported for blocked checks.
	waitHint *prometheus.HistogramVec

	// checkDuration observes how long the admission attempt itself took.
	checkDuration prometheus.Histogram
}

// NewMetrics creates Metrics registered with the given registerer. Use
// prometheus.DefaultRegisterer for the process-wide registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		checks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "throttle_gate_checks_total",
				Help: "Total number of gate checks performed",
			},
			[]string{"resource", "result"},
		),

		waitHint: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "throttle_gate_wait_hint_seconds",
				Help:    "Wait hints reported for blocked checks",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"resource"},
		),

		checkDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "throttle_check_duration_seconds",
				Help:    "Duration of admission attempts in seconds",
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
		),
	}
}

// observeCheck records one Check outcome. Safe to call on a nil receiver.
func (m *Metrics) observeCheck(resource string, wait, took time.Duration) {
	if m == nil {
		return
	}

	result := "admitted"
	if wait > 0 {
		result = "blocked"
		m.waitHint.WithLabelValues(resource).Observe(wait.Seconds())
	}
	m.checks.WithLabelValues(resource, result).Inc()
	m.checkDuration.Observe(took.Seconds())
}
