package reporter

import (
	"fmt"
	"strings"

	"github.com/verdictlabs/verdict/packages/events"
	"github.com/verdictlabs/verdict/packages/excerpt"
	"github.com/verdictlabs/verdict/packages/format"
	"github.com/verdictlabs/verdict/packages/trace"
)

// writeErr renders a serialized error. Every field is optional; whatever is
// absent simply renders nothing. A compiler diagnostic preempts all other
// output, including the stack.
func (r *Reporter) writeErr(errInfo *events.ErrorInfo) {
	if errInfo == nil {
		return
	}

	if errInfo.CompilerDiagnostic != "" {
		r.sink.WriteLine(r.theme.ErrorStack(trimTrailingNewlines(errInfo.CompilerDiagnostic)))
		return
	}

	if errInfo.Source != nil && errInfo.Source.File != "" {
		r.sink.WriteLine(r.theme.ErrorSource(fmt.Sprintf("%s:%d", r.relativeFile(errInfo.Source.File), errInfo.Source.Line)))
		if text, ok := excerpt.Extract(errInfo.Source.File, errInfo.Source.Line, r.columns-2); ok {
			r.sink.WriteLine("")
			r.sink.WriteLine(text)
			r.sink.WriteLine("")
		}
	}

	switch {
	case errInfo.AssertionError:
		if errInfo.PrintMessage && errInfo.Message != "" {
			r.sink.WriteLine(errInfo.Message)
			r.sink.WriteLine("")
		}
		for _, value := range errInfo.Values {
			r.sink.WriteLine(value.Label)
			r.sink.WriteLine("")
			r.sink.WriteLine(value.Formatted)
			r.sink.WriteLine("")
		}
		if errInfo.ImproperUsage != "" {
			r.sink.WriteLine(r.theme.Information(errInfo.ImproperUsage))
			r.sink.WriteLine("")
		}
	case errInfo.NonErrorObject:
		if errInfo.Formatted != "" {
			r.sink.WriteLine(trimTrailingNewlines(errInfo.Formatted))
		}
	default:
		if errInfo.Summary != "" {
			r.sink.WriteLine(errInfo.Summary)
		}
	}

	r.writeStack(errInfo)
}

// writeStack renders the stack trace, beautified when the serializer asked
// for it: harness-internal frames are muted, surviving frames get a pointer
// glyph. Frame order is preserved and duplicates are kept.
func (r *Reporter) writeStack(errInfo *events.ErrorInfo) {
	if errInfo.Stack == "" {
		return
	}

	if !errInfo.BeautifyStack {
		r.sink.EnsureEmptyLine()
		r.sink.WriteLine(r.theme.ErrorStack(errInfo.Stack))
		return
	}

	frames := trace.Split(errInfo.Stack)
	if len(frames) == 0 {
		return
	}
	r.sink.EnsureEmptyLine()
	for _, frame := range frames {
		if frame.Internal {
			r.sink.WriteLine(r.theme.StackFrame(frame.Text))
		} else {
			r.sink.WriteLine(r.theme.ErrorStack(format.Pointer + " " + frame.Text))
		}
	}
}

func trimTrailingNewlines(s string) string {
	return strings.TrimRight(s, "\n")
}
