// Package throttle provides a lock-free, fixed-capacity admission limiter
// for rolling one-second windows, plus a pattern-keyed gate for applying
// budgets to outgoing HTTP requests.
//
// # Key Concepts
//
//   - [Throttle] is the core primitive: a ring of N atomic timestamp cells
//     and a rotating cursor. Admissions claim cursor generations with
//     compare-and-swap operations, so at most N admissions can land inside
//     any rolling window without a single lock being taken.
//   - [Gate] maps URL patterns to per-resource Throttles and enforces a
//     [Strategy] when a resource is at capacity: reject, hold, or log only.
//   - [journal.Journal] optionally records admission outcomes. An in-memory
//     journal is provided along with a SQLite-backed one for persistence
//     and a buffered front that keeps the check path off the database.
//   - [Metrics] optionally exports Prometheus counters and histograms for
//     gate traffic.
//
// # Quick Start
//
// Use a Throttle directly when one budget is enough:
//
//	t, err := throttle.New(100) // 100 admissions per second
//	if err != nil {
//		// ...
//	}
//	if t.Allow() {
//		// proceed
//	}
//
// Or register resources on a Gate and wrap an http.Client:
//
//	gate := throttle.NewGate()
//	gate.Register(throttle.Resource{
//		Name:     "stripe",
//		Pattern:  "api.stripe.com/*",
//		TPS:      100,
//		Strategy: throttle.Reject,
//	})
//
//	client := &http.Client{
//		Transport: gate.Transport(nil),
//	}
//
// See the [Throttle] and [Gate] documentation for the full API.
package throttle
