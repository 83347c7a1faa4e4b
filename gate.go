package throttle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ryhazerus/throttle/journal"
)

// ErrLimitExceeded is returned when a check is rejected because the matched
// resource is at capacity.
var ErrLimitExceeded = errors.New("throttle: rate limit exceeded")

// LimitError reports which resource was at capacity and how long to wait
// before the blocking slot's window expires.
type LimitError struct {
	Resource   Resource
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("throttle: rate limit exceeded for %s (retry in %v)", e.Resource.Name, e.RetryAfter)
}

func (e *LimitError) Unwrap() error {
	return ErrLimitExceeded
}

// Wait blocks for the reported retry hint or until the context is
// cancelled. The hint is advisory; pair with another check for a guarantee.
func (e *LimitError) Wait(ctx context.Context) error {
	if e.RetryAfter <= 0 {
		return nil
	}
	t := time.NewTimer(e.RetryAfter)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// gateResource pairs a registered resource with its compiled pattern and
// dedicated admission ring.
type gateResource struct {
	res     Resource
	pat     pattern
	limiter *Throttle
}

// Gate applies per-resource admission budgets to outgoing requests. Each
// registered [Resource] gets its own lock-free [Throttle]; the gate routes
// a checked URL to the first matching resource and applies its strategy.
type Gate struct {
	mu        sync.RWMutex
	resources []*gateResource
	journal   journal.Journal
	metrics   *Metrics
	onBlocked func(Resource, time.Duration)
}

// NewGate creates a new Gate with the given options.
func NewGate(opts ...GateOption) *Gate {
	g := &Gate{}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Register adds a resource to be tracked by the gate. It returns an error
// when the resource's budget or window is invalid.
func (g *Gate) Register(r Resource) error {
	var opts []Option
	if r.Window > 0 {
		opts = append(opts, WithWindow(r.Window))
	}
	limiter, err := New(r.TPS, opts...)
	if err != nil {
		return fmt.Errorf("throttle: register %s: %w", r.Name, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.resources = append(g.resources, &gateResource{
		res:     r,
		pat:     compilePattern(r.Pattern),
		limiter: limiter,
	})
	return nil
}

// Check tests whether a request to the given URL is admitted. It records
// one admission against the first matching resource and applies that
// resource's strategy. A URL matching no resource always passes.
func (g *Gate) Check(ctx context.Context, rawURL string) error {
	g.mu.RLock()
	gr := g.lookupLocked(rawURL)
	g.mu.RUnlock()

	if gr == nil {
		return nil
	}

	start := time.Now()
	wait := gr.limiter.Admit()
	g.metrics.observeCheck(gr.res.Name, wait, time.Since(start))

	if wait == 0 {
		g.record(ctx, gr.res.Name, true, 0)
		return nil
	}

	if g.onBlocked != nil {
		g.onBlocked(gr.res, wait)
	}

	switch gr.res.Strategy {
	case Hold:
		if err := gr.limiter.WaitContext(ctx); err != nil {
			g.record(ctx, gr.res.Name, false, wait)
			return fmt.Errorf("throttle: holding for %s: %w", gr.res.Name, err)
		}
		g.record(ctx, gr.res.Name, true, wait)
		return nil
	case LogOnly:
		// The request passes, but the journal keeps the limiter's verdict
		// so budgets can be sized from recorded traffic.
		g.record(ctx, gr.res.Name, false, wait)
		return nil
	default:
		g.record(ctx, gr.res.Name, false, wait)
		return &LimitError{Resource: gr.res, RetryAfter: wait}
	}
}

// lookupLocked returns the first resource matching the URL. Callers hold at
// least a read lock.
func (g *Gate) lookupLocked(rawURL string) *gateResource {
	for _, gr := range g.resources {
		if gr.pat.match(rawURL) {
			return gr
		}
	}
	return nil
}

// record writes one outcome to the journal, if one is configured.
func (g *Gate) record(ctx context.Context, resource string, admitted bool, wait time.Duration) {
	if g.journal == nil {
		return
	}
	// Journal failures do not affect admission decisions.
	_ = g.journal.Record(ctx, journal.Entry{
		Resource: resource,
		At:       time.Now(),
		Admitted: admitted,
		Wait:     wait,
	})
}

// ResourceStatus holds a point-in-time wait report for a single resource.
type ResourceStatus struct {
	Resource Resource
	// Wait is the probe result for the resource's active slot: zero when
	// an admission would currently succeed. It inherits Probe's
	// single-slot pessimism.
	Wait time.Duration
}

// Status probes every registered resource and reports its current wait.
func (g *Gate) Status() []ResourceStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]ResourceStatus, 0, len(g.resources))
	for _, gr := range g.resources {
		out = append(out, ResourceStatus{Resource: gr.res, Wait: gr.limiter.Probe()})
	}
	return out
}

// Resources returns a copy of all registered resources.
func (g *Gate) Resources() []Resource {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Resource, 0, len(g.resources))
	for _, gr := range g.resources {
		out = append(out, gr.res)
	}
	return out
}

// Tally returns the journaled outcome counts for a resource. It fails when
// no journal is configured.
func (g *Gate) Tally(ctx context.Context, name string) (journal.Tally, error) {
	if g.journal == nil {
		return journal.Tally{}, errors.New("throttle: no journal configured")
	}
	return g.journal.Tally(ctx, name)
}

// Transport wraps an http.RoundTripper so that all requests made through it
// are automatically checked against registered resources.
func (g *Gate) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &transport{gate: g, base: base}
}

// Close releases the journal, if one is configured.
func (g *Gate) Close() error {
	if g.journal == nil {
		return nil
	}
	return g.journal.Close()
}
