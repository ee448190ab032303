package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	cwd, err := os.Getwd()
	require.NoError(t, err)

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"absolute", "/var/data", "/var/data"},
		{"cleans-dots", "/var/data/../logs", "/var/logs"},
		{"tilde", "~/stuff", filepath.Join(home, "stuff")},
		{"relative", "stuff", filepath.Join(cwd, "stuff")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ResolvePath(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}

	_, err = ResolvePath("")
	assert.Error(t, err)
}

func TestEnsureDirAndParent(t *testing.T) {
	root := t.TempDir()

	dir := filepath.Join(root, "a", "b")
	require.NoError(t, EnsureDir(dir))
	assert.DirExists(t, dir)

	// repeated calls are a no-op
	require.NoError(t, EnsureDir(dir))

	file := filepath.Join(root, "x", "y", "f.txt")
	require.NoError(t, EnsureParent(file))
	assert.DirExists(t, filepath.Join(root, "x", "y"))
	assert.NoFileExists(t, file)
}

func TestDirAndFileExists(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.True(t, DirExists(root))
	assert.False(t, DirExists(file))
	assert.False(t, DirExists(filepath.Join(root, "nope")))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(root))
	assert.False(t, FileExists(filepath.Join(root, "nope")))
}
