// Package journal persists pipeline runs and their state transitions in a
// local SQLite database, keyed by run UUID.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"owldlv/internal/logging"
)

// ErrNotFound is returned for an unknown run id.
var ErrNotFound = errors.New("run not found")

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Record is one journaled run.
type Record struct {
	ID         string
	Mode       string
	Strategy   string
	TBox       string
	ABox       string
	Query      string
	ResultPath string
	State      string
	ErrorKind  string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is in progress
}

// Transition is one recorded state change.
type Transition struct {
	State string
	At    time.Time
}

// Recorder receives run lifecycle events.
type Recorder interface {
	Begin(r Record) error
	Transition(id, state string) error
	Finish(id, state, errorKind, errMsg string) error
}

// Discard is a Recorder that records nothing.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Begin(Record) error                          { return nil }
func (discard) Transition(string, string) error             { return nil }
func (discard) Finish(string, string, string, string) error { return nil }

// Journal is the SQLite-backed Recorder.
type Journal struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Journal, error) {
	timer := logging.StartTimer(logging.CategoryJournal, "Open")
	defer timer.Stop()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.JournalWarn("Failed to set sqlite busy_timeout: %v", err)
	}

	j := &Journal{db: db, path: path, now: time.Now}
	if err := j.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Journal("Journal opened at %s", path)
	return j, nil
}

func (j *Journal) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		strategy TEXT NOT NULL DEFAULT '',
		tbox TEXT NOT NULL DEFAULT '',
		abox TEXT NOT NULL DEFAULT '',
		query TEXT NOT NULL DEFAULT '',
		result_path TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL,
		error_kind TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS transitions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		state TEXT NOT NULL,
		at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transitions_run ON transitions(run_id);
	`
	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	return nil
}

// Path returns the database file.
func (j *Journal) Path() string { return j.path }

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) stamp() string {
	return j.now().UTC().Format(time.RFC3339Nano)
}

// Begin inserts a new run in its initial state.
func (j *Journal) Begin(r Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	at := j.stamp()
	if !r.StartedAt.IsZero() {
		at = r.StartedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err := j.db.Exec(
		`INSERT INTO runs (id, mode, strategy, tbox, abox, query, result_path, state, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Mode, r.Strategy, r.TBox, r.ABox, r.Query, r.ResultPath, r.State, at,
	)
	if err != nil {
		return fmt.Errorf("journal begin %s: %w", r.ID, err)
	}
	_, err = j.db.Exec("INSERT INTO transitions (run_id, state, at) VALUES (?, ?, ?)", r.ID, r.State, at)
	if err != nil {
		return fmt.Errorf("journal begin %s: %w", r.ID, err)
	}
	return nil
}

// Transition records a state change.
func (j *Journal) Transition(id, state string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.transitionLocked(id, state, j.stamp())
}

func (j *Journal) transitionLocked(id, state, at string) error {
	res, err := j.db.Exec("UPDATE runs SET state = ? WHERE id = ?", state, id)
	if err != nil {
		return fmt.Errorf("journal transition %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("journal transition %s: %w", id, ErrNotFound)
	}
	if _, err := j.db.Exec("INSERT INTO transitions (run_id, state, at) VALUES (?, ?, ?)", id, state, at); err != nil {
		return fmt.Errorf("journal transition %s: %w", id, err)
	}
	return nil
}

// Finish records the terminal state and any error.
func (j *Journal) Finish(id, state, errorKind, errMsg string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	at := j.stamp()
	if err := j.transitionLocked(id, state, at); err != nil {
		return err
	}
	_, err := j.db.Exec(
		"UPDATE runs SET error_kind = ?, error = ?, finished_at = ? WHERE id = ?",
		errorKind, errMsg, at, id,
	)
	if err != nil {
		return fmt.Errorf("journal finish %s: %w", id, err)
	}
	return nil
}

const selectRuns = `SELECT id, mode, strategy, tbox, abox, query, result_path, state,
	error_kind, error, started_at, finished_at FROM runs`

// Get returns one run.
func (j *Journal) Get(id string) (*Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(selectRuns+" WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("journal get %s: %w", id, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("journal get %s: %w", id, ErrNotFound)
	}
	return &records[0], nil
}

// Recent returns up to limit runs, newest first.
func (j *Journal) Recent(limit int) ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.Query(selectRuns+" ORDER BY started_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("journal recent: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Transitions returns the recorded states of a run in order.
func (j *Journal) Transitions(id string) ([]Transition, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query("SELECT state, at FROM transitions WHERE run_id = ? ORDER BY id", id)
	if err != nil {
		return nil, fmt.Errorf("journal transitions %s: %w", id, err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var state, at string
		if err := rows.Scan(&state, &at); err != nil {
			return nil, fmt.Errorf("journal transitions %s: %w", id, err)
		}
		out = append(out, Transition{State: state, At: parseTime(at)})
	}
	return out, rows.Err()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var r Record
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Mode, &r.Strategy, &r.TBox, &r.ABox, &r.Query, &r.ResultPath,
			&r.State, &r.ErrorKind, &r.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
