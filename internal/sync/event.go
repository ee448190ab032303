package sync

import (
	"time"
)

// EventStatus is the outcome of one action.
type EventStatus string

const (
	StatusOK      EventStatus = "ok"
	StatusFailed  EventStatus = "failed"
	StatusSkipped EventStatus = "skipped"
)

// SyncEvent is the immutable record of one completed, failed, or skipped
// action. Events are handed to the caller; the core never writes logs
// itself.
type SyncEvent struct {
	RunID  string
	Action ActionKind
	Path   string
	Status EventStatus
	Err    error

	// Bytes is the number of bytes written for a copy.
	Bytes int64

	Time time.Time
}

// PassResult summarizes one apply batch.
type PassResult struct {
	RunID    string
	Started  time.Time
	Duration time.Duration

	DirsCreated  int
	FilesCopied  int
	FilesUpdated int
	FilesDeleted int
	DirsDeleted  int
	Skipped      int
	Errors       int
	BytesCopied  int64

	// Aborted is set when the context was cancelled before the batch
	// finished; the remaining actions were not attempted.
	Aborted bool

	Events []SyncEvent
}

// Clean reports whether every attempted action succeeded.
func (r *PassResult) Clean() bool {
	return r.Errors == 0 && !r.Aborted
}

// Changed reports whether the pass touched the replica at all.
func (r *PassResult) Changed() bool {
	return r.DirsCreated+r.FilesCopied+r.FilesUpdated+r.FilesDeleted+r.DirsDeleted > 0
}
