package reporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingWriter captures each Write call separately so tests can assert
// on write atomicity.
type recordingWriter struct {
	writes []string
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.writes = append(w.writes, string(p))
	return len(p), nil
}

func TestLineSinkIndentsNonEmptyLines(t *testing.T) {
	var buf bytes.Buffer
	s := newLineSink(&buf, "  ")

	s.WriteLine("hello")
	s.WriteLine("")
	s.WriteLine("multi\nline")

	assert.Equal(t, "  hello\n\n  multi\n  line\n", buf.String())
}

func TestLineSinkEnsureEmptyLineIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := newLineSink(&buf, "  ")

	s.WriteLine("hello")
	s.EnsureEmptyLine()
	s.EnsureEmptyLine()
	s.EnsureEmptyLine()

	assert.Equal(t, "  hello\n\n", buf.String())
}

func TestLineSinkEnsureEmptyLineAtStart(t *testing.T) {
	var buf bytes.Buffer
	s := newLineSink(&buf, "  ")

	// Nothing written yet counts as a blank last line.
	s.EnsureEmptyLine()
	assert.Equal(t, "", buf.String())
}

func TestLineSinkCorkFlushesAsOneWrite(t *testing.T) {
	w := &recordingWriter{}
	s := newLineSink(w, "  ")

	s.Cork()
	s.WriteLine("one")
	s.WriteLine("two")
	s.WriteLine("")
	s.Uncork()

	require.Len(t, w.writes, 1)
	assert.Equal(t, "  one\n  two\n\n", w.writes[0])
}

func TestLineSinkUncorkWithNothingBufferedWritesNothing(t *testing.T) {
	w := &recordingWriter{}
	s := newLineSink(w, "  ")

	s.Cork()
	s.Uncork()

	assert.Empty(t, w.writes)
}
