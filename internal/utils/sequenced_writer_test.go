package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequencedWriter_NumbersLines(t *testing.T) {
	var out bytes.Buffer
	w := NewSequencedWriter(&out)

	_, err := w.Write([]byte("first\nsecond\n"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "line=1 time="))
	assert.True(t, strings.HasSuffix(lines[0], " first"))
	assert.True(t, strings.HasPrefix(lines[1], "line=2 time="))
	assert.True(t, strings.HasSuffix(lines[1], " second"))
}

func TestSequencedWriter_BuffersPartialLines(t *testing.T) {
	var out bytes.Buffer
	w := NewSequencedWriter(&out)

	_, err := w.Write([]byte("hel"))
	require.NoError(t, err)
	assert.Empty(t, out.String())

	_, err = w.Write([]byte("lo\n"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out.String(), " hello\n"))
}

func TestSequencedWriter_FlushEmitsTrailingLine(t *testing.T) {
	var out bytes.Buffer
	w := NewSequencedWriter(&out)

	_, err := w.Write([]byte("no newline"))
	require.NoError(t, err)
	assert.Empty(t, out.String())

	require.NoError(t, w.Flush())
	assert.True(t, strings.HasSuffix(out.String(), " no newline\n"))

	// nothing buffered, flushing again is a no-op
	before := out.String()
	require.NoError(t, w.Flush())
	assert.Equal(t, before, out.String())
}
