// Package redis provides a Redis-backed [journal.Journal] so admission
// outcomes survive restarts and can be aggregated across processes. The
// limiter itself stays single-process; the journal only records history.
package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/ryhazerus/throttle/journal"
)

// Compile-time interface check.
var _ journal.Journal = (*Journal)(nil)

// Journal records admission outcomes in Redis. Each resource is stored as
// a hash with fields "admitted", "blocked", and "last_event_ns".
type Journal struct {
	client *redis.Client
}

// New creates a new Redis-backed journal.
func New(client *redis.Client) *Journal {
	return &Journal{client: client}
}

// Record adds one outcome to the resource's hash. HIncrBy is atomic, so no
// script is needed; there is no window rollover to coordinate.
func (j *Journal) Record(ctx context.Context, e journal.Entry) error {
	field := "blocked"
	if e.Admitted {
		field = "admitted"
	}
	n := e.Count
	if n < 1 {
		n = 1
	}

	key := redisKey(e.Resource)
	pipe := j.client.Pipeline()
	pipe.HIncrBy(ctx, key, field, n)
	pipe.HSet(ctx, key, "last_event_ns", e.At.UnixNano())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("throttle/journal/redis: record: %w", err)
	}
	return nil
}

// Tally returns the accumulated counts for the named resource.
func (j *Journal) Tally(ctx context.Context, resource string) (journal.Tally, error) {
	vals, err := j.client.HGetAll(ctx, redisKey(resource)).Result()
	if err != nil {
		return journal.Tally{}, fmt.Errorf("throttle/journal/redis: tally: %w", err)
	}

	var t journal.Tally
	if len(vals) == 0 {
		return t, nil
	}

	if t.Admitted, err = parseField(vals, "admitted"); err != nil {
		return journal.Tally{}, fmt.Errorf("throttle/journal/redis: parse admitted: %w", err)
	}
	if t.Blocked, err = parseField(vals, "blocked"); err != nil {
		return journal.Tally{}, fmt.Errorf("throttle/journal/redis: parse blocked: %w", err)
	}
	return t, nil
}

func parseField(vals map[string]string, field string) (int64, error) {
	v, ok := vals[field]
	if !ok || v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

// Purge removes the hash for the named resource.
func (j *Journal) Purge(ctx context.Context, resource string) error {
	return j.client.Del(ctx, redisKey(resource)).Err()
}

// Close closes the underlying Redis client.
func (j *Journal) Close() error {
	return j.client.Close()
}

func redisKey(resource string) string {
	return "throttle:" + resource
}
