package journal

import (
	"context"
	"time"
)

// Entry is one recorded check outcome.
type Entry struct {
	// Resource is the name of the checked resource.
	Resource string
	// At is when the check happened.
	At time.Time
	// Admitted reports whether the check was admitted.
	Admitted bool
	// Wait is the wait hint reported for a blocked check; zero when admitted.
	Wait time.Duration
	// Count is the number of outcomes this entry represents. Zero means
	// one; batching backends such as [Buffered] use larger counts.
	Count int64
}

// outcomes returns the number of outcomes e stands for.
func (e Entry) outcomes() int64 {
	if e.Count < 1 {
		return 1
	}
	return e.Count
}

// Tally holds the accumulated outcome counts for one resource.
type Tally struct {
	Admitted int64
	Blocked  int64
}

// Journal defines the interface for admission ledger backends.
type Journal interface {
	// Record appends one check outcome to the ledger.
	Record(ctx context.Context, e Entry) error

	// Tally returns the accumulated counts for the named resource.
	Tally(ctx context.Context, resource string) (Tally, error)

	// Purge removes all recorded outcomes for the named resource.
	Purge(ctx context.Context, resource string) error

	// Close releases any resources held by the journal.
	Close() error
}
