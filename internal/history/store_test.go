package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmurga/syncv/internal/sync"
)

func samplePass(runID string, started time.Time) *sync.PassResult {
	return &sync.PassResult{
		RunID:       runID,
		Started:     started,
		Duration:    120 * time.Millisecond,
		DirsCreated: 1,
		FilesCopied: 2,
		Errors:      1,
		BytesCopied: 2048,
		Events: []sync.SyncEvent{
			{RunID: runID, Action: sync.ActionMkdir, Path: "a", Status: sync.StatusOK, Time: started},
			{RunID: runID, Action: sync.ActionCopy, Path: "a/b.txt", Status: sync.StatusOK, Bytes: 1024, Time: started},
			{RunID: runID, Action: sync.ActionCopy, Path: "a/c.txt", Status: sync.StatusFailed, Err: errors.New("permission denied"), Time: started},
		},
	}
}

func TestStore_RecordAndQuery(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	started := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordPass(samplePass("run-1", started)))

	runs, err := store.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].RunID)
	assert.Equal(t, int64(120), runs[0].DurationMS)
	assert.Equal(t, 2, runs[0].FilesCopied)
	assert.Equal(t, 1, runs[0].Errors)
	assert.Equal(t, int64(2048), runs[0].BytesCopied)

	events, err := store.Events("run-1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "mkdir", events[0].Action)
	assert.Equal(t, "copy", events[1].Action)
	assert.Equal(t, int64(1024), events[1].Bytes)
	assert.Equal(t, "failed", events[2].Status)
	assert.Equal(t, "permission denied", events[2].Error)
}

func TestStore_RunsNewestFirst(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordPass(samplePass("run-old", base)))
	require.NoError(t, store.RecordPass(samplePass("run-new", base.Add(time.Hour))))

	runs, err := store.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-new", runs[0].RunID)
	assert.Equal(t, "run-old", runs[1].RunID)

	limited, err := store.Runs(1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "run-new", limited[0].RunID)
}

func TestStore_EventsForUnknownRunAreEmpty(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	events, err := store.Events("nope")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	started := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordPass(samplePass("run-1", started)))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].RunID)
}
