package reporter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdictlabs/verdict/packages/events"
)

func newErrReporter(t *testing.T) (*Reporter, *bytes.Buffer) {
	t.Helper()
	var report bytes.Buffer
	r := New(Config{ReportStream: &report, StdStream: &bytes.Buffer{}})
	return r, &report
}

func TestWriteErrNilIsSafe(t *testing.T) {
	r, report := newErrReporter(t)
	r.writeErr(nil)
	assert.Empty(t, report.String())
}

func TestWriteErrCompilerDiagnosticPreemptsEverything(t *testing.T) {
	r, report := newErrReporter(t)

	r.writeErr(&events.ErrorInfo{
		CompilerDiagnostic: "src/x.ts(3,1): error TS2322\n\n\n",
		Summary:            "should not render",
		Stack:              "should not render either",
	})

	out := report.String()
	assert.Equal(t, "  src/x.ts(3,1): error TS2322\n", out)
}

func TestWriteErrSourceLocationAndExcerpt(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "calc.js")
	require.NoError(t, os.WriteFile(source, []byte("const a = 1\nconst b = 2\nassert(a === b)\n"), 0o644))

	r, report := newErrReporter(t)
	r.writeErr(&events.ErrorInfo{
		Summary: "Error: assertion failed",
		Source:  &events.SourceLocation{File: source, Line: 3},
	})

	out := report.String()
	assert.Contains(t, out, fmt.Sprintf("%s:3\n", source))
	assert.Contains(t, out, "> 3: assert(a === b)")
	assert.Contains(t, out, "Error: assertion failed\n")
}

func TestWriteErrMissingSourceFileStillRendersLocation(t *testing.T) {
	r, report := newErrReporter(t)

	r.writeErr(&events.ErrorInfo{
		Summary: "Error: gone",
		Source:  &events.SourceLocation{File: "does/not/exist.js", Line: 12},
	})

	out := report.String()
	assert.Contains(t, out, "does/not/exist.js:12\n")
	assert.Contains(t, out, "Error: gone\n")
}

func TestWriteErrAssertionValues(t *testing.T) {
	r, report := newErrReporter(t)

	r.writeErr(&events.ErrorInfo{
		AssertionError: true,
		PrintMessage:   true,
		Message:        "values differ",
		Values: []events.FormattedValue{
			{Label: "Difference (- actual, + expected):", Formatted: "- 2\n+ 3"},
		},
		ImproperUsage: "`t.is()` expects two arguments",
	})

	out := report.String()
	assert.Contains(t, out, "values differ\n")
	assert.Contains(t, out, "Difference (- actual, + expected):\n")
	assert.Contains(t, out, "- 2\n  + 3\n")
	assert.Contains(t, out, "`t.is()` expects two arguments\n")
}

func TestWriteErrAssertionMessageSuppressed(t *testing.T) {
	r, report := newErrReporter(t)

	r.writeErr(&events.ErrorInfo{
		AssertionError: true,
		PrintMessage:   false,
		Message:        "hidden",
		Values:         []events.FormattedValue{{Label: "Actual:", Formatted: "2"}},
	})

	out := report.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "Actual:\n")
}

func TestWriteErrNonErrorObject(t *testing.T) {
	r, report := newErrReporter(t)

	r.writeErr(&events.ErrorInfo{
		NonErrorObject: true,
		Formatted:      "{code: 42}\n\n",
	})

	assert.Equal(t, "  {code: 42}\n", report.String())
}

func TestWriteErrBeautifiedStack(t *testing.T) {
	r, report := newErrReporter(t)

	r.writeErr(&events.ErrorInfo{
		Summary:       "Error: boom",
		BeautifyStack: true,
		Stack: "at user (test/x.js:1:1)\n" +
			"at helper (/p/node_modules/lib/h.js:2:2)\n" +
			"at user2 (test/x.js:3:3)",
	})

	out := report.String()
	assert.Contains(t, out, "› at user (test/x.js:1:1)\n")
	assert.Contains(t, out, "  at helper (/p/node_modules/lib/h.js:2:2)\n")
	assert.NotContains(t, out, "› at helper")
	assert.Contains(t, out, "› at user2 (test/x.js:3:3)\n")

	// Frame order is preserved.
	require.True(t, strings.Index(out, "at user (") < strings.Index(out, "at helper"))
}

func TestWriteErrRawStack(t *testing.T) {
	r, report := newErrReporter(t)

	r.writeErr(&events.ErrorInfo{
		Summary: "Error: plain",
		Stack:   "Error: plain\nat f (x.js:1:1)",
	})

	out := report.String()
	assert.Contains(t, out, "Error: plain\n\n  Error: plain\n  at f (x.js:1:1)\n")
	assert.NotContains(t, out, "›")
}

func TestWriteErrEmptyStackRendersNothingExtra(t *testing.T) {
	r, report := newErrReporter(t)

	r.writeErr(&events.ErrorInfo{Summary: "Error: no stack"})
	assert.Equal(t, "  Error: no stack\n", report.String())
}
