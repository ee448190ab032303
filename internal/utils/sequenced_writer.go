package utils

import (
	"bytes"
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// SequencedWriter is an io.Writer that prefixes every complete line with
// a monotonic sequence number and a timestamp before passing it on. The
// log file gets the prefix; the slog handler writing through it omits its
// own time attribute.
type SequencedWriter struct {
	target io.Writer
	seq    atomic.Uint64
	buf    bytes.Buffer
}

func NewSequencedWriter(target io.Writer) *SequencedWriter {
	return &SequencedWriter{target: target}
}

func (w *SequencedWriter) Write(p []byte) (int, error) {
	if _, err := w.buf.Write(p); err != nil {
		return 0, err
	}

	for {
		data := w.buf.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			return len(p), nil
		}
		line := append([]byte(nil), data[:i]...)
		w.buf.Next(i + 1)
		if err := w.writeLine(line); err != nil {
			return len(p), err
		}
	}
}

// Flush writes out any incomplete trailing line.
func (w *SequencedWriter) Flush() error {
	rest := append([]byte(nil), w.buf.Bytes()...)
	if len(rest) == 0 {
		return nil
	}
	w.buf.Reset()
	return w.writeLine(rest)
}

func (w *SequencedWriter) writeLine(line []byte) error {
	prefix := fmt.Sprintf("line=%d time=%s ", w.seq.Add(1), time.Now().Format(time.RFC3339))
	if _, err := io.WriteString(w.target, prefix); err != nil {
		return err
	}
	_, err := w.target.Write(append(line, '\n'))
	return err
}
