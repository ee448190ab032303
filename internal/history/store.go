// Package history persists an audit log of synchronization passes. The
// store is write-only from the daemon's point of view: the sync core
// never reads it, so every pass still derives all state from the
// filesystem alone.
package history

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gmurga/syncv/internal/db"
	"github.com/gmurga/syncv/internal/sync"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	started       TIMESTAMP NOT NULL,
	duration_ms   INTEGER NOT NULL,
	dirs_created  INTEGER NOT NULL,
	files_copied  INTEGER NOT NULL,
	files_updated INTEGER NOT NULL,
	files_deleted INTEGER NOT NULL,
	dirs_deleted  INTEGER NOT NULL,
	skipped       INTEGER NOT NULL,
	errors        INTEGER NOT NULL,
	bytes_copied  INTEGER NOT NULL,
	aborted       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id  TEXT NOT NULL REFERENCES runs(run_id),
	action  TEXT NOT NULL,
	path    TEXT NOT NULL,
	status  TEXT NOT NULL,
	error   TEXT NOT NULL DEFAULT '',
	bytes   INTEGER NOT NULL DEFAULT 0,
	created TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id);
`

// RunRecord is one row of the runs table.
type RunRecord struct {
	RunID        string    `db:"run_id"`
	Started      time.Time `db:"started"`
	DurationMS   int64     `db:"duration_ms"`
	DirsCreated  int       `db:"dirs_created"`
	FilesCopied  int       `db:"files_copied"`
	FilesUpdated int       `db:"files_updated"`
	FilesDeleted int       `db:"files_deleted"`
	DirsDeleted  int       `db:"dirs_deleted"`
	Skipped      int       `db:"skipped"`
	Errors       int       `db:"errors"`
	BytesCopied  int64     `db:"bytes_copied"`
	Aborted      bool      `db:"aborted"`
}

// EventRecord is one row of the events table.
type EventRecord struct {
	ID      int64     `db:"id"`
	RunID   string    `db:"run_id"`
	Action  string    `db:"action"`
	Path    string    `db:"path"`
	Status  string    `db:"status"`
	Error   string    `db:"error"`
	Bytes   int64     `db:"bytes"`
	Created time.Time `db:"created"`
}

type Store struct {
	db *sqlx.DB
}

// Open opens (and migrates) the history database at path. ":memory:"
// gives an in-memory store.
func Open(path string) (*Store, error) {
	database, err := db.NewSqliteDB(db.WithPath(path))
	if err != nil {
		return nil, err
	}
	if _, err := database.Exec(schema); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrate history schema: %w", err)
	}
	return &Store{db: database}, nil
}

// RecordPass appends one pass result and all of its events atomically.
func (s *Store) RecordPass(result *sync.PassResult) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	run := RunRecord{
		RunID:        result.RunID,
		Started:      result.Started.UTC(),
		DurationMS:   result.Duration.Milliseconds(),
		DirsCreated:  result.DirsCreated,
		FilesCopied:  result.FilesCopied,
		FilesUpdated: result.FilesUpdated,
		FilesDeleted: result.FilesDeleted,
		DirsDeleted:  result.DirsDeleted,
		Skipped:      result.Skipped,
		Errors:       result.Errors,
		BytesCopied:  result.BytesCopied,
		Aborted:      result.Aborted,
	}
	if _, err := tx.NamedExec(`
		INSERT INTO runs (run_id, started, duration_ms, dirs_created, files_copied, files_updated,
			files_deleted, dirs_deleted, skipped, errors, bytes_copied, aborted)
		VALUES (:run_id, :started, :duration_ms, :dirs_created, :files_copied, :files_updated,
			:files_deleted, :dirs_deleted, :skipped, :errors, :bytes_copied, :aborted)`, run); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, e := range result.Events {
		errText := ""
		if e.Err != nil {
			errText = e.Err.Error()
		}
		record := EventRecord{
			RunID:   e.RunID,
			Action:  e.Action.String(),
			Path:    e.Path,
			Status:  string(e.Status),
			Error:   errText,
			Bytes:   e.Bytes,
			Created: e.Time.UTC(),
		}
		if _, err := tx.NamedExec(`
			INSERT INTO events (run_id, action, path, status, error, bytes, created)
			VALUES (:run_id, :action, :path, :status, :error, :bytes, :created)`, record); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	return tx.Commit()
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(limit int) ([]RunRecord, error) {
	var runs []RunRecord
	err := s.db.Select(&runs, `SELECT * FROM runs ORDER BY started DESC LIMIT ?`, limit)
	return runs, err
}

// Events returns a run's events in execution order.
func (s *Store) Events(runID string) ([]EventRecord, error) {
	var events []EventRecord
	err := s.db.Select(&events, `SELECT * FROM events WHERE run_id = ? ORDER BY id`, runID)
	return events, err
}

func (s *Store) Close() error {
	return s.db.Close()
}
