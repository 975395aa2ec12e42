// Package history persists run summaries to a local SQLite database and
// serves them back for the history command and recovery notifications.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/abdul-hamid-achik/stagehand/packages/results"
)

// DefaultFile is the history database location relative to the project
// directory.
const DefaultFile = ".stagehand/history.db"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	suite       TEXT NOT NULL,
	started_at  INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	total       INTEGER NOT NULL,
	passed      INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	errors      INTEGER NOT NULL,
	skipped     INTEGER NOT NULL,
	incomplete  INTEGER NOT NULL,
	risky       INTEGER NOT NULL,
	stopped     INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS results (
	run_id     TEXT NOT NULL REFERENCES runs(id),
	test       TEXT NOT NULL,
	status     TEXT NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	elapsed_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
CREATE INDEX IF NOT EXISTS idx_runs_suite ON runs(suite, started_at);
`

// Run is one stored run summary.
type Run struct {
	ID         string
	Suite      string
	Started    time.Time
	Duration   time.Duration
	Total      int
	Passed     int
	Failed     int
	Errors     int
	Skipped    int
	Incomplete int
	Risky      int
	Stopped    bool
}

// Success mirrors results.Summary.Success for stored runs.
func (r Run) Success() bool {
	return r.Failed == 0 && r.Errors == 0
}

// Store is a SQLite-backed run archive.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the history database at path, creating
// parent directories along the way.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("preparing history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores a run summary with its per-test results in one transaction.
func (s *Store) Record(summary results.Summary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, suite, started_at, duration_ms, total, passed, failed,
			errors, skipped, incomplete, risky, stopped)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID, summary.Suite, summary.Started.UnixMilli(),
		summary.Duration.Milliseconds(), summary.Total, summary.Passed,
		summary.Failed, summary.Errors, summary.Skipped, summary.Incomplete,
		summary.Risky, summary.Stopped,
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	for _, rec := range summary.Records {
		reason := rec.Reason
		if reason == "" && rec.Err != nil {
			reason = rec.Err.Error()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO results (run_id, test, status, reason, elapsed_ms)
			 VALUES (?, ?, ?, ?, ?)`,
			summary.RunID, rec.Test, string(rec.Status), reason,
			rec.Elapsed.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("recording result for %q: %w", rec.Test, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Recent returns the latest n runs, newest first.
func (s *Store) Recent(n int) ([]Run, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, suite, started_at, duration_ms, total, passed, failed,
			errors, skipped, incomplete, risky, stopped
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedMs, durationMs int64
		if err := rows.Scan(&r.ID, &r.Suite, &startedMs, &durationMs, &r.Total,
			&r.Passed, &r.Failed, &r.Errors, &r.Skipped, &r.Incomplete,
			&r.Risky, &r.Stopped); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Started = time.UnixMilli(startedMs)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return runs, nil
}

// LastSuccess reports whether the most recent recorded run of the suite
// passed. found is false when the suite has no history yet.
func (s *Store) LastSuccess(suiteName string) (success, found bool, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var failed, errored int
	err = s.db.QueryRowContext(ctx,
		`SELECT failed, errors FROM runs WHERE suite = ?
		 ORDER BY started_at DESC, id DESC LIMIT 1`, suiteName,
	).Scan(&failed, &errored)
	if err == sql.ErrNoRows {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("loading last run: %w", err)
	}
	return failed == 0 && errored == 0, true, nil
}
