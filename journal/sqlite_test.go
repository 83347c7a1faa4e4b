package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRecordAndTally(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.Record(ctx, Entry{Resource: "api", At: time.Now(), Admitted: true}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := s.Record(ctx, Entry{Resource: "api", At: time.Now(), Wait: time.Second}); err != nil {
			t.Fatal(err)
		}
	}

	tally, err := s.Tally(ctx, "api")
	if err != nil {
		t.Fatal(err)
	}
	if tally.Admitted != 5 {
		t.Errorf("Admitted = %d, want 5", tally.Admitted)
	}
	if tally.Blocked != 2 {
		t.Errorf("Blocked = %d, want 2", tally.Blocked)
	}
}

func TestSQLiteUnknownResource(t *testing.T) {
	s := newTestSQLite(t)

	tally, err := s.Tally(context.Background(), "nothing")
	if err != nil {
		t.Fatal(err)
	}
	if tally != (Tally{}) {
		t.Errorf("Tally = %+v, want zero", tally)
	}
}

func TestSQLiteBulkCount(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	if err := s.Record(ctx, Entry{Resource: "api", At: time.Now(), Admitted: true, Count: 100}); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, Entry{Resource: "api", At: time.Now(), Count: 7}); err != nil {
		t.Fatal(err)
	}

	tally, _ := s.Tally(ctx, "api")
	if tally.Admitted != 100 || tally.Blocked != 7 {
		t.Errorf("Tally = %+v, want {100 7}", tally)
	}
}

func TestSQLitePurge(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	s.Record(ctx, Entry{Resource: "api", At: time.Now(), Admitted: true})
	if err := s.Purge(ctx, "api"); err != nil {
		t.Fatal(err)
	}

	tally, _ := s.Tally(ctx, "api")
	if tally != (Tally{}) {
		t.Errorf("Tally after purge = %+v, want zero", tally)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Record(ctx, Entry{Resource: "api", At: time.Now(), Admitted: true})
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { reopened.Close() })

	tally, err := reopened.Tally(ctx, "api")
	if err != nil {
		t.Fatal(err)
	}
	if tally.Admitted != 1 {
		t.Errorf("Admitted after reopen = %d, want 1", tally.Admitted)
	}
}
