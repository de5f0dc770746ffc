// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists run outcomes and the processed-file ledger in
// a local SQLite database. The ledger replaces the processed.log text
// file the legacy job kept on the drop.
package history

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/pdiddy/bifeed/pkg/types"
)

// Run is one recorded pipeline run.
type Run struct {
	ID         string        `json:"id" yaml:"id"`
	FeedFile   string        `json:"feed_file" yaml:"feed_file"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
	Stats      types.RunStats `json:"stats" yaml:"stats"`
	Status     string        `json:"status" yaml:"status"`
}

// Store manages the run-history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path and bootstraps the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			feed_file TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			scanned INTEGER NOT NULL,
			accepted INTEGER NOT NULL,
			skipped_missing INTEGER NOT NULL,
			skipped_marker INTEGER NOT NULL,
			duplicates INTEGER NOT NULL,
			status TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE TABLE IF NOT EXISTS processed_files (
			name TEXT PRIMARY KEY,
			run_id TEXT REFERENCES runs(id),
			processed_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// NewRunID mints a lexically sortable run identifier.
func NewRunID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// RecordRun inserts one finished run.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, feed_file, started_at, finished_at,
			scanned, accepted, skipped_missing, skipped_marker, duplicates, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.FeedFile,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Stats.Scanned, run.Stats.Accepted,
		run.Stats.SkippedMissingField, run.Stats.SkippedMarkerAbsent,
		run.Stats.DuplicatesSkipped, run.Status,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means 20.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, feed_file, started_at, finished_at,
			scanned, accepted, skipped_missing, skipped_marker, duplicates, status
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.FeedFile, &started, &finished,
			&r.Stats.Scanned, &r.Stats.Accepted,
			&r.Stats.SkippedMissingField, &r.Stats.SkippedMarkerAbsent,
			&r.Stats.DuplicatesSkipped, &r.Status); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// IsProcessed reports whether name is already in the processed ledger.
func (s *Store) IsProcessed(ctx context.Context, name string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM processed_files WHERE name = ?`, name).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking processed file %s: %w", name, err)
	}
	return true, nil
}

// MarkProcessed records name in the ledger, attributed to runID. An
// empty runID stores NULL (hand-marked entries). Marking an
// already-processed file updates the attribution.
func (s *Store) MarkProcessed(ctx context.Context, name, runID string) error {
	var rid any
	if runID != "" {
		rid = runID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO processed_files (name, run_id, processed_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET run_id=excluded.run_id, processed_at=excluded.processed_at`,
		name, rid, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("marking %s processed: %w", name, err)
	}
	return nil
}
