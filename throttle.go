package throttle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultWindow is the rolling window over which admissions are counted
// unless overridden with [WithWindow].
const DefaultWindow = time.Second

// ErrZeroCapacity is returned by New when the capacity is zero.
var ErrZeroCapacity = errors.New("throttle: capacity must be positive")

// ErrInvalidWindow is returned by New when a non-positive window is configured.
var ErrInvalidWindow = errors.New("throttle: window must be positive")

// Throttle admits at most N callers per rolling window without taking locks.
//
// It keeps a fixed ring of N atomic timestamp cells and a rotating cursor.
// Each admission exclusively claims one cursor generation with a
// compare-and-swap and then stamps the corresponding cell with the current
// time; a cell whose stamp is younger than the window blocks the ring until
// it goes stale. Since exactly N cells exist, no more than N admissions can
// carry stamps inside any window-length span.
//
// A Throttle is safe for concurrent use; the probe and admit paths never
// block and never allocate. The zero value is not usable; call [New].
type Throttle struct {
	window int64 // ns
	epoch  time.Time
	cursor atomic.Int64
	slots  []atomic.Int64
}

// New creates a Throttle admitting at most tps callers per window.
// The window defaults to [DefaultWindow]; see [WithWindow].
func New(tps uint, opts ...Option) (*Throttle, error) {
	if tps == 0 {
		return nil, ErrZeroCapacity
	}

	t := &Throttle{
		window: int64(DefaultWindow),
		epoch:  time.Now(),
		slots:  make([]atomic.Int64, tps),
	}
	for _, o := range opts {
		o(t)
	}
	if t.window <= 0 {
		return nil, ErrInvalidWindow
	}

	return t, nil
}

// Capacity returns the number of admissions allowed per window.
func (t *Throttle) Capacity() int {
	return len(t.slots)
}

// Window returns the rolling window length.
func (t *Throttle) Window() time.Duration {
	return time.Duration(t.window)
}

// now returns nanoseconds on a monotonic clock. The +1 offset keeps a
// genuine admission stamp from ever colliding with the zero "never used"
// sentinel stored in fresh cells.
func (t *Throttle) now() int64 {
	return int64(time.Since(t.epoch)) + 1
}

// stale reports whether a cell stamped ts no longer counts against the
// window. A zero stamp means the cell was never used and is always stale.
func (t *Throttle) stale(ts, now int64) bool {
	return ts == 0 || now-ts > t.window
}

// Probe reports how long until an admission would succeed for the slot
// currently under the cursor: zero if that slot is already stale, otherwise
// the remaining nanoseconds of its window. Probe never mutates the ring.
//
// Probe inspects only the single slot the cursor points at. After a burst
// of concurrent admissions the reported wait can be pessimistic relative to
// the slot a concurrent [Throttle.Admit] call would actually land on;
// callers needing a guarantee must follow up with Admit.
func (t *Throttle) Probe() time.Duration {
	now := t.now()
	c := t.cursor.Load()
	ts := t.slots[c%int64(len(t.slots))].Load()

	if t.stale(ts, now) {
		return 0
	}
	return time.Duration(t.window - (now - ts))
}

// Admit attempts to record one admission. It returns zero on success, or a
// wait hint: the nanoseconds until the blocking slot's window expires, or
// the full window length if the attempt budget was exhausted by contention.
//
// Admit never blocks and never allocates. The clock is read once per call
// so staleness comparisons across retries stay mutually consistent.
func (t *Throttle) Admit() time.Duration {
	now := t.now()
	n := int64(len(t.slots))

	for attempt := int64(0); attempt < n; attempt++ {
		c := t.cursor.Load()
		slot := &t.slots[c%n]
		ts := slot.Load()

		if !t.stale(ts, now) {
			// The active slot is still inside its window; the ring is full.
			return time.Duration(t.window - (now - ts))
		}

		if !t.cursor.CompareAndSwap(c, c+1) {
			// Lost the race for this generation; re-read the cursor.
			continue
		}

		// Generation c is now exclusively ours, so the cell must still hold
		// the value read above. A failure here is a protocol violation.
		if !slot.CompareAndSwap(ts, now) {
			panic("throttle: slot mutated after exclusive cursor claim")
		}

		return 0
	}

	// Every attempt lost a cursor race. Report the most conservative hint.
	return time.Duration(t.window)
}

// Allow reports whether one admission was recorded. It is shorthand for
// Admit() == 0.
func (t *Throttle) Allow() bool {
	return t.Admit() == 0
}

// Wait blocks until an admission is recorded, yielding the goroutine
// between attempts. It cannot be cancelled; use [Throttle.WaitContext] for
// a cancellable variant.
func (t *Throttle) Wait() {
	for t.Admit() > 0 {
		runtime.Gosched()
	}
}

// WaitContext blocks until an admission is recorded or ctx is done. Between
// attempts it sleeps for the wait hint reported by Admit rather than
// spinning.
func (t *Throttle) WaitContext(ctx context.Context) error {
	for {
		d := t.Admit()
		if d == 0 {
			return nil
		}

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Sleep pauses the calling goroutine for the wait currently reported by
// [Throttle.Probe], if any, and returns without re-checking.
//
// This is advisory: Probe inspects a single slot and other callers may be
// admitted during the pause, so admission is not guaranteed when Sleep
// returns. Pair it with Admit when a guarantee is needed.
func (t *Throttle) Sleep() {
	if d := t.Probe(); d > 0 {
		time.Sleep(d)
	}
}

// Snapshot renders the calling goroutine, the cursor, and every slot stamp
// for debugging. It reads each cell independently while other goroutines
// may be mutating them, so the rendered state need not be consistent; it is
// a diagnostic, not part of the admission protocol.
func (t *Throttle) Snapshot() string {
	var b strings.Builder
	fmt.Fprintf(&b, "goroutine:%d cursor:%d slots:", goroutineID(), t.cursor.Load())
	for i := range t.slots {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", t.slots[i].Load())
	}
	return b.String()
}

// goroutineID extracts the current goroutine's id from its stack header
// ("goroutine N [running]: ..."). Diagnostic use only.
func goroutineID() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
