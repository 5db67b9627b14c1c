// Package history provides SQLite-backed persistence for validation
// reports. The validation core owns no state; this store is a caller-side
// archive fed by the CLI, kept project-local under .guardrail/history.db.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okikut/guardrail/internal/report"
)

// Store wraps an SQLite database holding past validation reports.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// Entry is one archived validation run.
type Entry struct {
	// RunID is the run's identity.
	RunID string
	// CreatedAt is when the run was archived.
	CreatedAt time.Time
	// Passed is the run's overall outcome.
	Passed bool
	// Violations is the total violation count.
	Violations int
}

// ProjectStorePath returns the history database path for a project.
func ProjectStorePath(projectRoot string) string {
	return filepath.Join(projectRoot, ".guardrail", "history.db")
}

// Open opens the history database at path, creating parent directories and
// the schema as needed. WAL mode is enabled for concurrent reads.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{conn: conn, path: path}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL,
	passed     INTEGER NOT NULL,
	violations INTEGER NOT NULL,
	report     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Save archives a report under the given run ID.
func (s *Store) Save(runID string, r *report.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := r.MarshalIndent()
	if err != nil {
		return err
	}

	passed := 0
	if r.Passed {
		passed = 1
	}

	_, err = s.conn.Exec(
		`INSERT OR REPLACE INTO runs (run_id, created_at, passed, violations, report) VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now().UTC(), passed, len(r.Violations), string(data),
	)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

// List returns up to limit entries, most recent first.
func (s *Store) List(limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.conn.Query(
		`SELECT run_id, created_at, passed, violations FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var passed int
		if err := rows.Scan(&e.RunID, &e.CreatedAt, &passed, &e.Violations); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		e.Passed = passed == 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get loads the archived report for a run ID.
func (s *Store) Get(runID string) (*report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.conn.QueryRow(`SELECT report FROM runs WHERE run_id = ?`, runID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	return report.Unmarshal([]byte(data))
}

// Prune deletes entries older than the retention window and returns how
// many were removed.
func (s *Store) Prune(retention time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-retention)
	res, err := s.conn.Exec(`DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.conn.Close()
}
