package throttle

import (
	"time"

	"github.com/ryhazerus/throttle/journal"
)

// Option configures a Throttle.
type Option func(*Throttle)

// WithWindow overrides the rolling window length. The default is
// [DefaultWindow]; shorter windows are mainly useful in tests.
func WithWindow(d time.Duration) Option {
	return func(t *Throttle) {
		t.window = int64(d)
	}
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithJournal sets a journal that records the outcome of every check.
// If not provided, outcomes are not recorded.
func WithJournal(j journal.Journal) GateOption {
	return func(g *Gate) {
		g.journal = j
	}
}

// WithMetrics sets the Prometheus metrics the gate reports into.
// If not provided, no metrics are collected.
func WithMetrics(m *Metrics) GateOption {
	return func(g *Gate) {
		g.metrics = m
	}
}

// WithOnBlocked sets a callback that fires whenever a check finds a
// resource at capacity, before the resource's strategy is applied. It fires
// regardless of strategy and is the primary signal for LogOnly resources.
func WithOnBlocked(fn func(Resource, time.Duration)) GateOption {
	return func(g *Gate) {
		g.onBlocked = fn
	}
}
