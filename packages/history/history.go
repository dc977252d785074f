// Package history persists run outcomes in a local SQLite database so that
// watch-mode re-runs can carry over the previous run's failure count.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	started_at   TIMESTAMP NOT NULL,
	failed_tests INTEGER NOT NULL,
	passed_tests INTEGER NOT NULL,
	skipped_tests INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at);
`

const queryTimeout = 5 * time.Second

// Run is one recorded run outcome.
type Run struct {
	ID           string
	StartedAt    time.Time
	FailedTests  int
	PassedTests  int
	SkippedTests int
}

// Store is a run-history database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing history database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts a run. A missing ID or start time is filled in.
func (s *Store) RecordRun(run Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, failed_tests, passed_tests, skipped_tests) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.FailedTests, run.PassedTests, run.SkippedTests)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// LastFailureCount returns the failed-test count of the most recent run, or
// zero when no run was recorded yet.
func (s *Store) LastFailureCount() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var failed int
	err := s.db.QueryRowContext(ctx,
		`SELECT failed_tests FROM runs ORDER BY started_at DESC, id DESC LIMIT 1`).Scan(&failed)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying run history: %w", err)
	}
	return failed, nil
}

// Runs returns all recorded runs, newest first.
func (s *Store) Runs() ([]Run, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, failed_tests, passed_tests, skipped_tests FROM runs ORDER BY started_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying run history: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FailedTests, &r.PassedTests, &r.SkippedTests); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
