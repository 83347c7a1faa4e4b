package journal

import (
	"context"
	"sync"
)

// Compile-time interface check.
var _ Journal = (*Memory)(nil)

// Memory is an in-memory Journal implementation.
// It is safe for concurrent use. Tallies are lost on process restart.
type Memory struct {
	mu      sync.Mutex
	tallies map[string]*Tally
}

// NewMemory creates a new in-memory journal.
func NewMemory() *Memory {
	return &Memory{
		tallies: make(map[string]*Tally),
	}
}

// Record adds one outcome to the resource's tally.
func (m *Memory) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tallies[e.Resource]
	if !ok {
		t = &Tally{}
		m.tallies[e.Resource] = t
	}

	if e.Admitted {
		t.Admitted += e.outcomes()
	} else {
		t.Blocked += e.outcomes()
	}
	return nil
}

// Tally returns the accumulated counts for the named resource.
func (m *Memory) Tally(_ context.Context, resource string) (Tally, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tallies[resource]
	if !ok {
		return Tally{}, nil
	}
	return *t, nil
}

// Purge removes the tally for the named resource.
func (m *Memory) Purge(_ context.Context, resource string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tallies, resource)
	return nil
}

// Close is a no-op for the in-memory journal.
func (m *Memory) Close() error {
	return nil
}
