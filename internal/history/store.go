// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records the outcome of every processed letter in a
// SQLite database so past runs can be listed and exported.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/engagement-letters/internal/ids"
	"github.com/pdiddy/engagement-letters/pkg/types"
)

const defaultMaxResults = 50

// Store manages the history SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the history database at cfg.DBPath, creating the
// schema if it does not exist.
func Open(cfg types.HistoryConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection serializes writes from concurrent requests.
	db.SetMaxOpenConns(1)

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults}
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
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			run_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			status TEXT NOT NULL,
			output_path TEXT,
			message TEXT,
			processed_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_run_id ON records(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_records_status ON records(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts rec. An empty ID is assigned a new ULID and a zero
// ProcessedAt is set to now. The stored record is returned.
func (s *Store) Record(ctx context.Context, rec types.ProcessingRecord) (types.ProcessingRecord, error) {
	if rec.ID == "" {
		rec.ID = ids.New()
	}
	if rec.ProcessedAt.IsZero() {
		rec.ProcessedAt = time.Now()
	}
	rec.ProcessedAt = rec.ProcessedAt.UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (id, run_id, filename, status, output_path, message, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.Filename, string(rec.Status),
		rec.OutputPath, rec.Message, rec.ProcessedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return types.ProcessingRecord{}, fmt.Errorf("inserting record for %s: %w", rec.Filename, err)
	}
	return rec, nil
}

// QueryOptions filters history queries.
type QueryOptions struct {
	RunID  string
	Status types.ProcessingStatus
	Limit  int
}

// Query returns matching records, newest first.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]types.ProcessingRecord, error) {
	var (
		where []string
		args  []any
	)
	if opts.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, opts.RunID)
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(opts.Status))
	}

	query := `SELECT id, run_id, filename, status, output_path, message, processed_at FROM records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rowid DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = s.maxResults
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	out := []types.ProcessingRecord{}
	for rows.Next() {
		var (
			rec                 types.ProcessingRecord
			status, processedAt string
			output, message     sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Filename, &status, &output, &message, &processedAt); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.Status = types.ProcessingStatus(status)
		rec.OutputPath = output.String
		rec.Message = message.String
		rec.ProcessedAt, err = time.Parse(time.RFC3339Nano, processedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing time of record %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Recent returns the newest records. A non-positive limit uses the
// configured maximum.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.ProcessingRecord, error) {
	return s.Query(ctx, QueryOptions{Limit: limit})
}

// Run returns every record of one run, newest first.
func (s *Store) Run(ctx context.Context, runID string) ([]types.ProcessingRecord, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM records WHERE run_id = ?`, runID).Scan(&n); err != nil {
		return nil, fmt.Errorf("counting run %s: %w", runID, err)
	}
	if n == 0 {
		return []types.ProcessingRecord{}, nil
	}
	return s.Query(ctx, QueryOptions{RunID: runID, Limit: n})
}

// RunSummary aggregates the records of one run.
type RunSummary struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	Updated   int       `json:"updated" yaml:"updated"`
	Unchanged int       `json:"unchanged" yaml:"unchanged"`
	Failed    int       `json:"failed" yaml:"failed"`
	Skipped   int       `json:"skipped" yaml:"skipped"`
}

// Total returns the number of letters in the run.
func (r RunSummary) Total() int {
	return r.Updated + r.Unchanged + r.Failed + r.Skipped
}

// Runs summarizes the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, MIN(processed_at),
			SUM(status = 'updated'), SUM(status = 'unchanged'),
			SUM(status = 'failed'), SUM(status = 'skipped')
		 FROM records GROUP BY run_id ORDER BY MIN(rowid) DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	out := []RunSummary{}
	for rows.Next() {
		var (
			r       RunSummary
			started string
		)
		if err := rows.Scan(&r.RunID, &started, &r.Updated, &r.Unchanged, &r.Failed, &r.Skipped); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("parsing start of run %s: %w", r.RunID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
