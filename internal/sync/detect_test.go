package sync

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModTimeDetector(t *testing.T) {
	base := fileEntry("f", 10, testTime)

	cases := []struct {
		name     string
		replica  *TreeEntry
		modified bool
	}{
		{"identical", fileEntry("f", 10, testTime), false},
		{"size-differs", fileEntry("f", 11, testTime), true},
		{"mtime-differs", fileEntry("f", 10, testTime.Add(time.Millisecond)), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			modified, err := ModTimeDetector{}.Modified(base, c.replica, "", "")
			require.NoError(t, err)
			assert.Equal(t, c.modified, modified)
		})
	}
}

func TestContentDetector_EqualMetadataShortCircuits(t *testing.T) {
	detector, err := NewContentDetector()
	require.NoError(t, err)

	// absolute paths are bogus on purpose: they must not be read
	modified, err := detector.Modified(
		fileEntry("f", 10, testTime), fileEntry("f", 10, testTime),
		"/does/not/exist", "/does/not/exist")
	require.NoError(t, err)
	assert.False(t, modified)
}

func TestContentDetector_HashesOnMetadataMismatch(t *testing.T) {
	root := t.TempDir()
	srcAbs := writeFile(t, root, "src.txt", "same content")
	replicaAbs := writeFile(t, root, "replica.txt", "same content")

	later := testTime.Add(time.Hour)
	require.NoError(t, os.Chtimes(srcAbs, testTime, testTime))
	require.NoError(t, os.Chtimes(replicaAbs, later, later))

	detector, err := NewContentDetector()
	require.NoError(t, err)

	src := fileEntry("f", 12, testTime)
	replica := fileEntry("f", 12, later)

	modified, err := detector.Modified(src, replica, srcAbs, replicaAbs)
	require.NoError(t, err)
	assert.False(t, modified, "equal content must win over a differing mtime")

	require.NoError(t, os.WriteFile(replicaAbs, []byte("other content"), 0o644))
	require.NoError(t, os.Chtimes(replicaAbs, later.Add(time.Hour), later.Add(time.Hour)))
	replica = fileEntry("f", 13, later.Add(time.Hour))

	modified, err = detector.Modified(src, replica, srcAbs, replicaAbs)
	require.NoError(t, err)
	assert.True(t, modified)
}

func TestContentDetector_MemoizesDigests(t *testing.T) {
	root := t.TempDir()
	srcAbs := writeFile(t, root, "src.txt", "cached content")
	require.NoError(t, os.Chtimes(srcAbs, testTime, testTime))

	detector, err := NewContentDetector()
	require.NoError(t, err)

	src := fileEntry("f", 14, testTime)
	replica := fileEntry("f", 14, testTime.Add(time.Hour))

	_, err = detector.Modified(src, replica, srcAbs, srcAbs)
	require.NoError(t, err)

	// removing the file proves later calls are served from the cache
	require.NoError(t, os.Remove(srcAbs))

	modified, err := detector.Modified(src, replica, srcAbs, srcAbs)
	require.NoError(t, err)
	assert.False(t, modified)
}

func TestContentDetector_ReadFailureIsAnError(t *testing.T) {
	detector, err := NewContentDetector()
	require.NoError(t, err)

	_, err = detector.Modified(
		fileEntry("f", 10, testTime), fileEntry("f", 10, testTime.Add(time.Second)),
		"/does/not/exist", "/does/not/exist")
	assert.Error(t, err)
}
