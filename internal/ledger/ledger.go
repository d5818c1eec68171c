// Package ledger persists a history of pipeline step executions in SQLite.
//
// The ledger is strictly observational: recording failures are logged by the
// caller and never fail a pipeline run.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"presskit/internal/config"
)

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// StepRecord is one step execution within a pipeline run.
type StepRecord struct {
	ID        int64
	RunID     string
	Step      string
	Themes    []string
	Processed int
	Skipped   int
	Duration  time.Duration
	Outcome   string
	ErrorText string
	StartedAt time.Time
}

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Open initializes or connects to the ledger database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "ledger.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the ledger database file.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) applyMigrations(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS step_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    step TEXT NOT NULL,
    themes TEXT NOT NULL,
    processed INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    outcome TEXT NOT NULL,
    error TEXT,
    started_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_step_runs_started ON step_runs(started_at DESC);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply ledger schema: %w", err)
	}
	return nil
}

// RecordStep inserts one step execution row.
func (s *Store) RecordStep(ctx context.Context, rec StepRecord) error {
	if s == nil || s.db == nil {
		return nil
	}
	startedAt := rec.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO step_runs (
            run_id, step, themes, processed, skipped,
            duration_ms, outcome, error, started_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.Step,
		strings.Join(rec.Themes, ","),
		rec.Processed,
		rec.Skipped,
		rec.Duration.Milliseconds(),
		rec.Outcome,
		nullableString(rec.ErrorText),
		startedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert step run: %w", err)
	}
	return nil
}

// RecentSteps returns the newest step executions, most recent first.
func (s *Store) RecentSteps(ctx context.Context, limit int) ([]StepRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, step, themes, processed, skipped,
                duration_ms, outcome, COALESCE(error, ''), started_at
         FROM step_runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query step runs: %w", err)
	}
	defer rows.Close()

	var records []StepRecord
	for rows.Next() {
		var rec StepRecord
		var themes string
		var durationMS int64
		var startedAt string
		if err := rows.Scan(
			&rec.ID, &rec.RunID, &rec.Step, &themes, &rec.Processed,
			&rec.Skipped, &durationMS, &rec.Outcome, &rec.ErrorText, &startedAt,
		); err != nil {
			return nil, fmt.Errorf("scan step run: %w", err)
		}
		if themes != "" {
			rec.Themes = strings.Split(themes, ",")
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if parsed, parseErr := time.Parse(time.RFC3339Nano, startedAt); parseErr == nil {
			rec.StartedAt = parsed
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
