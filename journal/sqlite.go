package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Compile-time interface check.
var _ Journal = (*SQLite)(nil)

// SQLite is a persistent Journal backed by SQLite.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) a SQLite database at the given path and
// initialises the schema. Use ":memory:" for an in-memory SQLite database.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("throttle/journal: open sqlite: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS throttle_journal (
			resource     TEXT PRIMARY KEY,
			admitted     INTEGER NOT NULL DEFAULT 0,
			blocked      INTEGER NOT NULL DEFAULT 0,
			last_event_ns INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("throttle/journal: create table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Record adds one outcome to the resource's row, inserting it on first use.
func (s *SQLite) Record(ctx context.Context, e Entry) error {
	var admitted, blocked int64
	if e.Admitted {
		admitted = e.outcomes()
	} else {
		blocked = e.outcomes()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO throttle_journal (resource, admitted, blocked, last_event_ns)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(resource) DO UPDATE SET
			admitted = throttle_journal.admitted + excluded.admitted,
			blocked = throttle_journal.blocked + excluded.blocked,
			last_event_ns = excluded.last_event_ns`,
		e.Resource, admitted, blocked, e.At.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("throttle/journal: record: %w", err)
	}
	return nil
}

// Tally returns the accumulated counts for the named resource.
func (s *SQLite) Tally(ctx context.Context, resource string) (Tally, error) {
	var t Tally
	err := s.db.QueryRowContext(ctx,
		`SELECT admitted, blocked FROM throttle_journal WHERE resource = ?`, resource,
	).Scan(&t.Admitted, &t.Blocked)

	if err == sql.ErrNoRows {
		return Tally{}, nil
	}
	if err != nil {
		return Tally{}, fmt.Errorf("throttle/journal: tally: %w", err)
	}
	return t, nil
}

// Purge removes the row for the named resource.
func (s *SQLite) Purge(ctx context.Context, resource string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM throttle_journal WHERE resource = ?`, resource)
	return err
}

// Close closes the underlying SQLite database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
