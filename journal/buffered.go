package journal

import (
	"context"
	"sync"
	"time"
)

// Compile-time interface check.
var _ Journal = (*Buffered)(nil)

// defaultFlushEvery is the number of buffered outcomes that triggers an
// automatic flush.
const defaultFlushEvery = 128

// Buffered wraps a persistent backend with an in-memory accumulator.
// Record only touches memory until the buffered outcome count reaches the
// flush threshold, so a gate's check path never waits on the backend for
// every event.
type Buffered struct {
	mu         sync.Mutex
	pending    map[string]*pendingTally
	buffered   int
	flushEvery int
	backend    Journal
}

type pendingTally struct {
	tally  Tally
	lastAt time.Time
}

// NewBuffered creates a Buffered journal in front of the given backend.
// flushEvery sets how many outcomes accumulate before an automatic flush;
// values below one select a default.
func NewBuffered(backend Journal, flushEvery int) *Buffered {
	if flushEvery < 1 {
		flushEvery = defaultFlushEvery
	}
	return &Buffered{
		pending:    make(map[string]*pendingTally),
		flushEvery: flushEvery,
		backend:    backend,
	}
}

// Record adds one outcome to the in-memory buffer, flushing to the backend
// when the threshold is reached.
func (b *Buffered) Record(ctx context.Context, e Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.pending[e.Resource]
	if !ok {
		p = &pendingTally{}
		b.pending[e.Resource] = p
	}
	if e.Admitted {
		p.tally.Admitted++
	} else {
		p.tally.Blocked++
	}
	p.lastAt = e.At
	b.buffered++

	if b.buffered >= b.flushEvery {
		return b.flushLocked(ctx)
	}
	return nil
}

// Tally returns backend counts combined with anything still buffered.
func (b *Buffered) Tally(ctx context.Context, resource string) (Tally, error) {
	t, err := b.backend.Tally(ctx, resource)
	if err != nil {
		return Tally{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.pending[resource]; ok {
		t.Admitted += p.tally.Admitted
		t.Blocked += p.tally.Blocked
	}
	return t, nil
}

// Purge drops buffered outcomes for the resource and purges the backend.
func (b *Buffered) Purge(ctx context.Context, resource string) error {
	b.mu.Lock()
	if p, ok := b.pending[resource]; ok {
		b.buffered -= int(p.tally.Admitted + p.tally.Blocked)
		delete(b.pending, resource)
	}
	b.mu.Unlock()

	return b.backend.Purge(ctx, resource)
}

// Flush writes all buffered outcomes to the backend.
func (b *Buffered) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushLocked(ctx)
}

// flushLocked drains the buffer into the backend as one bulk entry per
// resource and outcome kind, using Entry.Count.
func (b *Buffered) flushLocked(ctx context.Context) error {
	for resource, p := range b.pending {
		if n := p.tally.Admitted; n > 0 {
			e := Entry{Resource: resource, At: p.lastAt, Admitted: true, Count: n}
			if err := b.backend.Record(ctx, e); err != nil {
				return err
			}
			p.tally.Admitted = 0
			b.buffered -= int(n)
		}
		if n := p.tally.Blocked; n > 0 {
			e := Entry{Resource: resource, At: p.lastAt, Count: n}
			if err := b.backend.Record(ctx, e); err != nil {
				return err
			}
			p.tally.Blocked = 0
			b.buffered -= int(n)
		}
		delete(b.pending, resource)
	}
	return nil
}

// Close flushes the buffer and closes the backend.
func (b *Buffered) Close() error {
	if err := b.Flush(context.Background()); err != nil {
		b.backend.Close()
		return err
	}
	return b.backend.Close()
}
