package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func dirEntry(path string) *TreeEntry {
	return &TreeEntry{Path: path, Kind: KindDir}
}

func fileEntry(path string, size int64, modTime time.Time) *TreeEntry {
	return &TreeEntry{Path: path, Kind: KindFile, Size: size, ModTime: modTime}
}

func symlinkEntry(path string) *TreeEntry {
	return &TreeEntry{Path: path, Kind: KindSymlink}
}

func scanOf(root string, entries ...*TreeEntry) *ScanResult {
	s := newScanResult(root)
	for _, e := range entries {
		s.add(e)
	}
	return s
}

func actionKinds(plan *Plan) []string {
	out := make([]string, 0, len(plan.Actions))
	for _, a := range plan.Actions {
		out = append(out, a.Kind.String()+" "+a.Path)
	}
	return out
}

func TestDiff_EmptyReplicaGetsFullTree(t *testing.T) {
	source := scanOf("/src",
		dirEntry("a"),
		fileEntry("a/b.txt", 10, testTime),
		dirEntry("a/c"),
	)
	replica := scanOf("/dst")

	plan := Diff(source, replica, DiffOptions{})

	assert.Equal(t, []string{
		"mkdir a",
		"mkdir a/c",
		"copy a/b.txt",
	}, actionKinds(plan))
	assert.Empty(t, plan.Skips)
}

func TestDiff_IdenticalTreesAreANoop(t *testing.T) {
	source := scanOf("/src", fileEntry("x.txt", 5, testTime))
	replica := scanOf("/dst", fileEntry("x.txt", 5, testTime))

	plan := Diff(source, replica, DiffOptions{})

	assert.True(t, plan.Empty())
}

func TestDiff_ExtraReplicaFileIsDeleted(t *testing.T) {
	source := scanOf("/src")
	replica := scanOf("/dst", fileEntry("old.txt", 3, testTime))

	plan := Diff(source, replica, DiffOptions{})

	assert.Equal(t, []string{"delete_file old.txt"}, actionKinds(plan))
}

func TestDiff_KindFlipDeletesThenCreates(t *testing.T) {
	source := scanOf("/src", dirEntry("n"))
	replica := scanOf("/dst", fileEntry("n", 3, testTime))

	plan := Diff(source, replica, DiffOptions{})

	assert.Equal(t, []string{
		"delete_file n",
		"mkdir n",
	}, actionKinds(plan))
}

func TestDiff_KindFlipDirToFile(t *testing.T) {
	source := scanOf("/src", fileEntry("n", 3, testTime))
	replica := scanOf("/dst",
		dirEntry("n"),
		fileEntry("n/inner.txt", 1, testTime),
	)

	plan := Diff(source, replica, DiffOptions{})

	// the directory delete covers its descendants
	assert.Equal(t, []string{
		"delete_dir n",
		"copy n",
	}, actionKinds(plan))
}

func TestDiff_ModifiedFileIsRecopied(t *testing.T) {
	cases := []struct {
		name     string
		replica  *TreeEntry
		modified bool
	}{
		{"size-changed", fileEntry("f", 9, testTime), true},
		{"mtime-changed", fileEntry("f", 5, testTime.Add(time.Second)), true},
		{"unchanged", fileEntry("f", 5, testTime), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			source := scanOf("/src", fileEntry("f", 5, testTime))
			replica := scanOf("/dst", c.replica)

			plan := Diff(source, replica, DiffOptions{})

			if c.modified {
				require.Len(t, plan.Actions, 1)
				assert.Equal(t, ActionCopy, plan.Actions[0].Kind)
				assert.True(t, plan.Actions[0].Overwrite)
			} else {
				assert.True(t, plan.Empty())
			}
		})
	}
}

func TestDiff_ObsoleteSubtreeReportedOnce(t *testing.T) {
	source := scanOf("/src")
	replica := scanOf("/dst",
		dirEntry("d"),
		fileEntry("d/f.txt", 1, testTime),
		dirEntry("d/sub"),
		fileEntry("d/sub/g.txt", 1, testTime),
	)

	plan := Diff(source, replica, DiffOptions{})

	assert.Equal(t, []string{"delete_dir d"}, actionKinds(plan))
}

func TestDiff_DeletesOrderedChildBeforeParent(t *testing.T) {
	source := scanOf("/src", dirEntry("kept"))
	replica := scanOf("/dst",
		dirEntry("kept"),
		fileEntry("kept/x.txt", 1, testTime),
		dirEntry("kept/y"),
		fileEntry("kept/y/z.txt", 1, testTime),
	)

	plan := Diff(source, replica, DiffOptions{})

	assert.Equal(t, []string{
		"delete_dir kept/y",
		"delete_file kept/x.txt",
	}, actionKinds(plan))
}

func TestDiff_SourceSymlinkIsSkipped(t *testing.T) {
	source := scanOf("/src", symlinkEntry("link"))
	replica := scanOf("/dst")

	plan := Diff(source, replica, DiffOptions{})

	assert.Empty(t, plan.Actions)
	require.Len(t, plan.Skips, 1)
	assert.Equal(t, "link", plan.Skips[0].Path)
}

func TestDiff_OrderingInvariants(t *testing.T) {
	source := scanOf("/src",
		dirEntry("a"),
		dirEntry("a/b"),
		fileEntry("a/b/c.txt", 1, testTime),
		fileEntry("a/d.txt", 1, testTime),
		dirEntry("e"),
		fileEntry("e/f.txt", 1, testTime),
	)
	replica := scanOf("/dst",
		dirEntry("gone"),
		fileEntry("gone/x.txt", 1, testTime),
		fileEntry("stale.txt", 1, testTime),
	)

	plan := Diff(source, replica, DiffOptions{})

	created := map[string]bool{}
	for _, a := range plan.Actions {
		switch a.Kind {
		case ActionMkdir, ActionCopy:
			if parent := parentKey(a.Path); parent != "" {
				assert.True(t, created[parent] || replica.byPath[parent] != nil,
					"parent of %s must be created first", a.Path)
			}
			created[a.Path] = true
		case ActionDeleteDir:
			for _, later := range plan.Actions {
				if later.Kind == ActionDeleteFile || later.Kind == ActionDeleteDir {
					assert.False(t, isUnder(later.Path, a.Path),
						"descendant delete %s must not follow delete of %s", later.Path, a.Path)
				}
			}
		}
	}
}
