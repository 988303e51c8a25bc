// Package history persists run summaries to a SQLite database under
// .logfix/, so earlier rewrite batches can be inspected after the fact.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"logfix/internal/errors"
	"logfix/internal/logging"
	"logfix/internal/report"
)

// Store is a run-history database handle.
type Store struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// RunRecord is one recorded run.
type RunRecord struct {
	ID                string `json:"id"`
	Command           string `json:"command"`
	Root              string `json:"root"`
	StartedAt         string `json:"startedAt"`
	DurationMs        int64  `json:"durationMs"`
	DryRun            bool   `json:"dryRun"`
	FilesScanned      int    `json:"filesScanned"`
	FilesModified     int    `json:"filesModified"`
	FilesErrored      int    `json:"filesErrored"`
	CallsRewritten    int    `json:"callsRewritten"`
	SkippedUnparsable int    `json:"skippedUnparsable"`
	SkippedMismatch   int    `json:"skippedMismatch"`
}

// FileRecord is one file outcome within a recorded run.
type FileRecord struct {
	RunID   string `json:"runId"`
	Path    string `json:"path"`
	Outcome string `json:"outcome"`
	Changes int    `json:"changes"`
	Backup  string `json:"backup,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Open opens or creates the history database at <root>/.logfix/logfix.db.
func Open(root string, logger *logging.Logger) (*Store, error) {
	dir := filepath.Join(root, ".logfix")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.New(errors.HistoryUnavailable, "cannot create .logfix directory", err)
	}

	dbPath := filepath.Join(dir, "logfix.db")
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.New(errors.HistoryUnavailable, "cannot open history database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, errors.New(errors.HistoryUnavailable, "cannot set pragma", err)
		}
	}

	s := &Store{conn: conn, logger: logger, dbPath: dbPath}
	if err := s.initializeSchema(); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Debug("History database opened", map[string]interface{}{
		"path": dbPath,
	})
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) initializeSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	command TEXT NOT NULL,
	root TEXT NOT NULL,
	started_at TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	dry_run INTEGER NOT NULL DEFAULT 0,
	files_scanned INTEGER NOT NULL,
	files_modified INTEGER NOT NULL,
	files_errored INTEGER NOT NULL,
	calls_rewritten INTEGER NOT NULL,
	skipped_unparsable INTEGER NOT NULL,
	skipped_mismatch INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS file_results (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	path TEXT NOT NULL,
	outcome TEXT NOT NULL,
	changes INTEGER NOT NULL,
	backup_path TEXT,
	error TEXT
);

CREATE INDEX IF NOT EXISTS idx_file_results_run ON file_results(run_id);
`
	if _, err := s.conn.Exec(schema); err != nil {
		return errors.New(errors.HistoryUnavailable, "cannot initialize schema", err)
	}
	return nil
}

// RecordRun stores a summary and its per-file outcomes in one transaction.
func (s *Store) RecordRun(command string, startedAt time.Time, summary *report.Summary) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
INSERT INTO runs (id, command, root, started_at, duration_ms, dry_run,
	files_scanned, files_modified, files_errored,
	calls_rewritten, skipped_unparsable, skipped_mismatch)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID, command, summary.Root,
		startedAt.UTC().Format(time.RFC3339), summary.DurationMs, boolToInt(summary.DryRun),
		summary.FilesScanned, summary.FilesModified, summary.FilesErrored,
		summary.Calls.Rewritten, summary.Calls.SkippedUnparsable, summary.Calls.SkippedMismatch)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, f := range summary.Files {
		_, err = tx.Exec(`
INSERT INTO file_results (run_id, path, outcome, changes, backup_path, error)
VALUES (?, ?, ?, ?, ?, ?)`,
			summary.RunID, f.Path, string(f.Outcome), f.Changes, f.Backup, f.Error)
		if err != nil {
			return fmt.Errorf("insert file result: %w", err)
		}
	}

	return tx.Commit()
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.conn.Query(`
SELECT id, command, root, started_at, duration_ms, dry_run,
	files_scanned, files_modified, files_errored,
	calls_rewritten, skipped_unparsable, skipped_mismatch
FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var dryRun int
		if err := rows.Scan(&r.ID, &r.Command, &r.Root, &r.StartedAt, &r.DurationMs, &dryRun,
			&r.FilesScanned, &r.FilesModified, &r.FilesErrored,
			&r.CallsRewritten, &r.SkippedUnparsable, &r.SkippedMismatch); err != nil {
			return nil, err
		}
		r.DryRun = dryRun != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// FileResults returns the per-file outcomes recorded for one run.
func (s *Store) FileResults(runID string) ([]FileRecord, error) {
	rows, err := s.conn.Query(`
SELECT run_id, path, outcome, changes, COALESCE(backup_path, ''), COALESCE(error, '')
FROM file_results WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.RunID, &f.Path, &f.Outcome, &f.Changes, &f.Backup, &f.Error); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
