package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/glimgeist/beforeiplay-scraper/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "beforeiplay.db"

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("run not found")

// Ledger provides SQLite-based storage for run history.
//
// Design decision: A single database file holds every run, regardless of
// output directory. Runs record their output root so history for different
// trees stays distinguishable.
type Ledger struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Ledger behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Ledger in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Ledger, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s: %w", dbPath, err)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	l := &Ledger{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := l.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return l, nil
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.dbPath
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (l *Ledger) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		output_dir TEXT NOT NULL,
		letter TEXT NOT NULL DEFAULT '',
		discovered INTEGER NOT NULL DEFAULT 0,
		total INTEGER NOT NULL DEFAULT 0,
		processed INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		written INTEGER NOT NULL DEFAULT 0,
		requests INTEGER NOT NULL DEFAULT 0,
		waited_ms INTEGER NOT NULL DEFAULT 0,
		interrupted INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		finished_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		path TEXT NOT NULL,
		outcome TEXT NOT NULL,
		request_made INTEGER NOT NULL DEFAULT 0,
		placeholder INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		finished_at TEXT NOT NULL,
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_items_run ON items(run_id);
	CREATE INDEX IF NOT EXISTS idx_items_outcome ON items(outcome);
	`

	_, err := l.db.ExecContext(context.Background(), schema)
	return err
}

// BeginRun inserts a run row and returns its ID.
func (l *Ledger) BeginRun(ctx context.Context, tally *model.RunTally) (int64, error) {
	query := `
	INSERT INTO runs (output_dir, letter, discovered, total, started_at)
	VALUES (?, ?, ?, ?, ?)
	`

	result, err := l.db.ExecContext(ctx, query,
		tally.OutputDir,
		tally.Letter,
		tally.Discovered,
		tally.Total,
		formatTimestamp(tally.StartedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return result.LastInsertId()
}

// RecordItem stores the result of one entry.
// Uses UPSERT so an entry listed twice in a run keeps its latest result.
func (l *Ledger) RecordItem(ctx context.Context, runID int64, rec model.ItemRecord) error {
	query := `
	INSERT INTO items (run_id, position, title, url, path, outcome, request_made, placeholder, error, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, url) DO UPDATE SET
		position = excluded.position,
		title = excluded.title,
		path = excluded.path,
		outcome = excluded.outcome,
		request_made = excluded.request_made,
		placeholder = excluded.placeholder,
		error = excluded.error,
		finished_at = excluded.finished_at
	`

	_, err := l.db.ExecContext(ctx, query,
		runID,
		rec.Index,
		rec.Title,
		rec.URL,
		rec.Path,
		rec.Outcome.String(),
		rec.RequestMade,
		rec.Placeholder,
		rec.Error,
		formatTimestamp(rec.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}

	return nil
}

// FinishRun stores the final counters of a run.
func (l *Ledger) FinishRun(ctx context.Context, tally *model.RunTally) error {
	query := `
	UPDATE runs SET
		discovered = ?,
		total = ?,
		processed = ?,
		errors = ?,
		skipped = ?,
		written = ?,
		requests = ?,
		waited_ms = ?,
		interrupted = ?,
		finished_at = ?
	WHERE id = ?
	`

	result, err := l.db.ExecContext(ctx, query,
		tally.Discovered,
		tally.Total,
		tally.Processed,
		tally.Errors,
		tally.Skipped,
		tally.Written,
		tally.Requests,
		tally.Waited.Milliseconds(),
		tally.Interrupted,
		formatTimestamp(tally.FinishedAt),
		tally.RunID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %d: %w", tally.RunID, ErrNotFound)
	}

	return nil
}

const runColumns = `id, output_dir, letter, discovered, total, processed, errors, skipped, written,
	requests, waited_ms, interrupted, started_at, COALESCE(finished_at, '')`

// ListRuns returns the most recent runs first. A limit of zero returns all runs.
func (l *Ledger) ListRuns(ctx context.Context, limit int) ([]*model.RunTally, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY id DESC`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.RunTally
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRun returns a run with its items. ErrNotFound is returned for unknown IDs.
func (l *Ledger) GetRun(ctx context.Context, id int64) (*model.RunTally, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

	run, err := scanRun(l.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	items, err := l.RunItems(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Items = items

	return run, nil
}

// RunItems returns the items of a run in processing order.
func (l *Ledger) RunItems(ctx context.Context, runID int64) ([]model.ItemRecord, error) {
	query := `
	SELECT position, title, url, path, outcome, request_made, placeholder, error, finished_at
	FROM items
	WHERE run_id = ?
	ORDER BY position
	`

	rows, err := l.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := make([]model.ItemRecord, 0)
	for rows.Next() {
		var rec model.ItemRecord
		var outcome, finished string

		if err := rows.Scan(
			&rec.Index,
			&rec.Title,
			&rec.URL,
			&rec.Path,
			&outcome,
			&rec.RequestMade,
			&rec.Placeholder,
			&rec.Error,
			&finished,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}

		o, ok := model.ParseOutcome(outcome)
		if !ok {
			return nil, fmt.Errorf("item %q has unknown outcome %q", rec.Title, outcome)
		}
		rec.Outcome = o
		rec.FinishedAt = parseTimestamp(finished)
		items = append(items, rec)
	}

	return items, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*model.RunTally, error) {
	var run model.RunTally
	var waitedMS int64
	var started, finished string

	err := s.Scan(
		&run.RunID,
		&run.OutputDir,
		&run.Letter,
		&run.Discovered,
		&run.Total,
		&run.Processed,
		&run.Errors,
		&run.Skipped,
		&run.Written,
		&run.Requests,
		&waitedMS,
		&run.Interrupted,
		&started,
		&finished,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Waited = time.Duration(waitedMS) * time.Millisecond
	run.StartedAt = parseTimestamp(started)
	run.FinishedAt = parseTimestamp(finished)
	run.Items = make([]model.ItemRecord, 0)

	return &run, nil
}

// formatTimestamp stores times in UTC with nanosecond precision.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
