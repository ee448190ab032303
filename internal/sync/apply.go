package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/gmurga/syncv/internal/utils"
)

// Apply executes a plan strictly in order and returns one event per
// action, plus one skipped event per diff skip. A failed action is
// recorded and the batch continues; the next pass re-derives whatever is
// still wrong. Cancelling the context stops the batch between actions
// and marks the result aborted.
//
// Every step is idempotent against partial earlier runs: an existing
// directory, an already-deleted file, and an already-deleted directory
// all count as success.
func Apply(ctx context.Context, plan *Plan) *PassResult {
	result := &PassResult{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}

	for _, skip := range plan.Skips {
		result.Skipped++
		result.Events = append(result.Events, SyncEvent{
			RunID:  result.RunID,
			Action: ActionSkip,
			Path:   skip.Path,
			Status: StatusSkipped,
			Err:    errors.New(skip.Reason),
			Time:   time.Now(),
		})
	}

	for _, action := range plan.Actions {
		if ctx.Err() != nil {
			result.Aborted = true
			break
		}

		bytes, err := execute(action)
		event := SyncEvent{
			RunID:  result.RunID,
			Action: action.Kind,
			Path:   action.Path,
			Bytes:  bytes,
			Time:   time.Now(),
		}

		if err != nil {
			event.Status = StatusFailed
			event.Err = err
			result.Errors++
		} else {
			event.Status = StatusOK
			result.count(action)
			result.BytesCopied += bytes
		}
		result.Events = append(result.Events, event)
	}

	result.Duration = time.Since(result.Started)
	return result
}

func (r *PassResult) count(a Action) {
	switch a.Kind {
	case ActionMkdir:
		r.DirsCreated++
	case ActionCopy:
		if a.Overwrite {
			r.FilesUpdated++
		} else {
			r.FilesCopied++
		}
	case ActionDeleteFile:
		r.FilesDeleted++
	case ActionDeleteDir:
		r.DirsDeleted++
	}
}

func execute(a Action) (int64, error) {
	switch a.Kind {
	case ActionMkdir:
		// MkdirAll succeeds on an existing directory
		return 0, os.MkdirAll(a.Dst, 0o755)

	case ActionCopy:
		// whole-file copy, overwriting in place; a failure leaves the
		// partial destination behind and the next pass retries it
		return utils.CopyFile(a.Src, a.Dst)

	case ActionDeleteFile:
		err := os.Remove(a.Dst)
		if err != nil && errors.Is(err, fs.ErrNotExist) {
			err = nil
		}
		return 0, err

	case ActionDeleteDir:
		// RemoveAll takes the whole subtree and is a no-op when absent
		return 0, os.RemoveAll(a.Dst)

	default:
		return 0, fmt.Errorf("unknown action kind %d", a.Kind)
	}
}
