// Package history persists a local record of script runs and
// environment operations.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a queried run does not exist.
var ErrNotFound = errors.New("run not found")

// Actions recorded in the runs table.
const (
	ActionRun     = "run"
	ActionCreate  = "venv-create"
	ActionInstall = "venv-install"
)

// Run is one recorded invocation: a script run or a venv operation.
type Run struct {
	ID          string
	Action      string
	Target      string // script path or env path
	Interpreter string
	ExitCode    int
	StdoutBytes int
	StderrBytes int
	Duration    time.Duration
	Detail      string // failure detail, empty on success
	StartedAt   time.Time
}

// Succeeded reports whether the recorded invocation exited cleanly.
func (r *Run) Succeeded() bool { return r.ExitCode == 0 }

// Store wraps a SQLite database holding run history.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path with WAL
// mode. Use ":memory:" for in-memory databases in tests.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history db %s: %w", dbPath, err)
	}

	// WAL mode for better concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// SQLite handles one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertRun records a run, assigning it a fresh ID when absent.
// Returns the run's ID.
func (s *Store) InsertRun(ctx context.Context, run *Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, action, target, interpreter, exit_code, stdout_bytes, stderr_bytes, duration_ms, detail, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Action, run.Target, nullString(run.Interpreter),
		run.ExitCode, run.StdoutBytes, run.StderrBytes,
		run.Duration.Milliseconds(), nullString(run.Detail),
		run.StartedAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run for %s: %w", run.Target, err)
	}
	return run.ID, nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, action, target, interpreter, exit_code, stdout_bytes, stderr_bytes, duration_ms, detail, started_at
		 FROM runs WHERE id = ?`, id)

	run, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first, up to limit.
// limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	q := `SELECT id, action, target, interpreter, exit_code, stdout_bytes, stderr_bytes, duration_ms, detail, started_at
	      FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Prune deletes all but the newest keep runs.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (
		    SELECT id FROM runs ORDER BY started_at DESC, id LIMIT ?
		 )`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

// scanRun scans one row via the given Scan function.
func scanRun(scan func(dest ...any) error) (*Run, error) {
	var run Run
	var interpreter, detail sql.NullString
	var durationMS, startedAt int64

	err := scan(
		&run.ID, &run.Action, &run.Target, &interpreter,
		&run.ExitCode, &run.StdoutBytes, &run.StderrBytes,
		&durationMS, &detail, &startedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Interpreter = interpreter.String
	run.Detail = detail.String
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.StartedAt = time.Unix(startedAt, 0)
	return &run, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
