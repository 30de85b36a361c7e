package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// Register the pure-Go SQLite driver (no CGO required).
	_ "modernc.org/sqlite"

	"github.com/giantswarm/sidecarrun/internal/fileutil"
)

// DefaultListLimit is the number of records List returns for a
// non-positive limit.
const DefaultListLimit = 20

// Record is one supervisor run.
type Record struct {
	RunID         string
	StartedAt     time.Time
	FinishedAt    time.Time
	Cause         string
	ExitCode      int
	DependencyPID int
	MainPID       int
	Detail        string
}

// Duration returns how long the run took.
func (r Record) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// timeLayout is fixed width so that ORDER BY on the text column is
// chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
	run_id         TEXT PRIMARY KEY,
	started_at     TEXT NOT NULL,
	finished_at    TEXT NOT NULL,
	cause          TEXT NOT NULL,
	exit_code      INTEGER NOT NULL,
	dependency_pid INTEGER NOT NULL DEFAULT 0,
	main_pid       INTEGER NOT NULL DEFAULT 0,
	detail         TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at)`,
}

// Store is a SQLite-backed run journal.
type Store struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// Open opens (creating if needed) the journal at path and ensures its schema.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := fileutil.EnsureDirForFile(path); err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}

	// WAL plus a busy timeout lets `sidecarrun history` read while a
	// supervisor is writing its final record.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, log: logger}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the runs table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create history schema in %s: %w", s.path, err)
		}
	}
	return nil
}

// Append stores rec. A duplicate RunID is an error.
func (s *Store) Append(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, finished_at, cause, exit_code, dependency_pid, main_pid, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.StartedAt.UTC().Format(timeLayout),
		rec.FinishedAt.UTC().Format(timeLayout),
		rec.Cause,
		rec.ExitCode,
		rec.DependencyPID,
		rec.MainPID,
		rec.Detail,
	)
	if err != nil {
		return fmt.Errorf("append run %s: %w", rec.RunID, err)
	}
	s.log.Debug("history: recorded run", "run_id", rec.RunID, "cause", rec.Cause, "exit_code", rec.ExitCode)
	return nil
}

// List returns up to limit records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, started_at, finished_at, cause, exit_code, dependency_pid, main_pid, detail
		 FROM runs ORDER BY started_at DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.log.Warn("history: close rows", "error", closeErr)
		}
	}()

	var out []Record
	for rows.Next() {
		var (
			rec               Record
			started, finished string
		)
		if err := rows.Scan(&rec.RunID, &started, &finished, &rec.Cause, &rec.ExitCode,
			&rec.DependencyPID, &rec.MainPID, &rec.Detail); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if rec.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parse started_at of run %s: %w", rec.RunID, err)
		}
		if rec.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("parse finished_at of run %s: %w", rec.RunID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
