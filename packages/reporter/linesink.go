package reporter

import (
	"bytes"
	"io"
	"strings"
)

// lineSink writes margin-indented, newline-terminated lines to the report
// stream. Cork and Uncork bracket the writes for one logical unit (one event,
// or the whole summary) so the destination receives them as a single Write
// even if it buffers asynchronously.
type lineSink struct {
	dest      io.Writer
	margin    string
	buf       bytes.Buffer
	corked    bool
	lastEmpty bool
}

func newLineSink(dest io.Writer, margin string) *lineSink {
	return &lineSink{dest: dest, margin: margin, lastEmpty: true}
}

// Cork starts buffering writes.
func (s *lineSink) Cork() {
	s.corked = true
}

// Uncork flushes everything buffered since Cork as one write.
func (s *lineSink) Uncork() {
	s.corked = false
	if s.buf.Len() > 0 {
		_, _ = s.dest.Write(s.buf.Bytes())
		s.buf.Reset()
	}
}

// WriteLine writes text as one or more indented lines, each terminated by a
// newline. The empty string writes a single blank line, which is never
// indented.
func (s *lineSink) WriteLine(text string) {
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			s.write("\n")
			s.lastEmpty = true
		} else {
			s.write(s.margin + line + "\n")
			s.lastEmpty = false
		}
	}
}

// EnsureEmptyLine writes a blank line unless the last line already was one.
// Calling it repeatedly writes at most one blank line.
func (s *lineSink) EnsureEmptyLine() {
	if !s.lastEmpty {
		s.WriteLine("")
	}
}

// WriteRaw writes text without margin or newline handling, still honouring
// the cork discipline. Used to force a line break after worker stdio chunks
// that do not end in one.
func (s *lineSink) WriteRaw(text string) {
	s.write(text)
	s.lastEmpty = strings.HasSuffix(text, "\n")
}

func (s *lineSink) write(text string) {
	if s.corked {
		s.buf.WriteString(text)
		return
	}
	_, _ = io.WriteString(s.dest, text)
}
