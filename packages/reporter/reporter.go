package reporter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/verdictlabs/verdict/packages/events"
	"github.com/verdictlabs/verdict/packages/format"
)

const (
	// DefaultDurationThreshold is the duration at or below which passed
	// tests are shown without a duration suffix.
	DefaultDurationThreshold = 100 * time.Millisecond

	defaultColumns = 80
	margin         = "  "
)

// Config configures a Reporter. ReportStream receives the rendered report;
// StdStream receives raw worker stdout/stderr.
type Config struct {
	DurationThreshold time.Duration
	ReportStream      io.Writer
	StdStream         io.Writer
	Watching          bool
	ProjectDir        string
}

// Reporter is the event-consumer state machine. It is not safe for
// concurrent use; the engine delivers one event at a time.
type Reporter struct {
	durationThreshold time.Duration
	std               io.Writer
	sink              *lineSink
	theme             *format.Theme
	watching          bool
	projectDir        string
	columns           int

	state runState
}

// New creates a Reporter. The terminal width is read once from the report
// stream, defaulting to 80 columns when it is not a terminal.
func New(cfg Config) *Reporter {
	if cfg.ReportStream == nil {
		cfg.ReportStream = os.Stdout
	}
	if cfg.StdStream == nil {
		cfg.StdStream = os.Stderr
	}
	if cfg.DurationThreshold <= 0 {
		cfg.DurationThreshold = DefaultDurationThreshold
	}

	r := &Reporter{
		durationThreshold: cfg.DurationThreshold,
		std:               cfg.StdStream,
		sink:              newLineSink(cfg.ReportStream, margin),
		theme:             format.NewTheme(),
		watching:          cfg.Watching,
		projectDir:        cfg.ProjectDir,
		columns:           terminalColumns(cfg.ReportStream),
	}
	r.state.reset()
	return r
}

func terminalColumns(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultColumns
}

// StartRun resets per-run state and subscribes to the plan's event stream.
// A plan flagged bail-without-reporting leaves state untouched and produces
// no output.
func (r *Reporter) StartRun(plan *events.Plan) {
	if plan == nil || plan.BailWithoutReporting {
		return
	}

	r.state.reset()
	st := &r.state
	st.failFastEnabled = plan.FailFastEnabled
	st.matching = plan.Matching
	st.previousFailures = plan.PreviousFailures
	if plan.Status != nil {
		if s := plan.Status.Stats(); s != nil {
			st.emptyParallelRun = s.EmptyParallelRun
		}
	}

	if len(plan.Files) > 1 || r.watching {
		prefix := plan.FilePathPrefix
		if prefix == "" {
			prefix = format.CommonPathPrefix(plan.Files)
		}
		st.prefixTitle = func(file, title string) string {
			return format.PrefixTitle(prefix, file, title)
		}
	}

	if plan.Status != nil {
		st.unsubscribe = plan.Status.Subscribe(r.consumeStateChange)
	}

	r.sink.Cork()
	defer r.sink.Uncork()
	if r.watching && plan.RunVector > 1 {
		r.sink.WriteLine(r.theme.Dim(strings.Repeat("─", r.columns)))
	}
	r.sink.WriteLine("")
}

// consumeStateChange updates run state for evt and renders its live output.
// Unknown event types are ignored.
func (r *Reporter) consumeStateChange(evt *events.Event) {
	r.sink.Cork()
	defer r.sink.Uncork()
	st := &r.state

	switch evt.Type {
	case events.TypeHookFailed, events.TypeTestFailed:
		st.failures = append(st.failures, evt)
		r.writeTestSummary(evt)

	case events.TypeTestPassed:
		if evt.KnownFailing {
			st.knownFailures = append(st.knownFailures, evt)
		}
		r.writeTestSummary(evt)

	case events.TypeInternalError:
		if evt.TestFile != "" {
			r.sink.WriteLine(r.theme.Error(fmt.Sprintf("%s Internal error when running %s", format.Cross, r.relativeFile(evt.TestFile))))
		} else {
			r.sink.WriteLine(r.theme.Error(format.Cross + " Internal error"))
		}
		if evt.Err != nil {
			if evt.Err.Summary != "" {
				r.sink.WriteLine(r.theme.ErrorStack(evt.Err.Summary))
			}
			if evt.Err.Stack != "" {
				r.sink.WriteLine(r.theme.ErrorStack(evt.Err.Stack))
			}
		}
		r.sink.WriteLine("")
		r.sink.WriteLine("")

	case events.TypeLineNumberSelectionError:
		r.sink.WriteLine(r.theme.Information(fmt.Sprintf("%s Could not parse %s for line number selection", format.Warning, r.relativeFile(evt.TestFile))))

	case events.TypeMissingImport:
		st.filesWithMissingImport[evt.TestFile] = true
		r.sink.WriteLine(r.theme.Error(fmt.Sprintf("%s No tests found in %s, make sure the test harness is imported at the top of the file", format.Cross, r.relativeFile(evt.TestFile))))

	case events.TypeHookFinished:
		if len(evt.Logs) > 0 {
			r.sink.WriteLine(st.prefixTitle(evt.TestFile, evt.Title))
			r.writeLogs(evt, false)
		}

	case events.TypeSelectedTest:
		// Selection of a test that will actually run is silent.
		if evt.Skip {
			r.sink.WriteLine(r.theme.Skip("- " + st.prefixTitle(evt.TestFile, evt.Title)))
		} else if evt.Todo {
			r.sink.WriteLine(r.theme.Todo("- " + st.prefixTitle(evt.TestFile, evt.Title)))
		}

	case events.TypeStats:
		st.stats = evt.Stats

	case events.TypeTimeout:
		r.sink.EnsureEmptyLine()
		r.sink.WriteLine(r.theme.Error(format.Cross + " Timed out while running tests"))
		r.sink.WriteLine("")
		r.writePendingTests(evt)

	case events.TypeInterrupt:
		r.sink.EnsureEmptyLine()
		r.sink.WriteLine(r.theme.Error(format.Cross + " Exiting due to interrupt"))
		r.sink.WriteLine("")
		r.writePendingTests(evt)

	case events.TypeUncaughtException, events.TypeUnhandledRejection:
		label := "Uncaught exception"
		if evt.Type == events.TypeUnhandledRejection {
			label = "Unhandled rejection"
		}
		r.sink.EnsureEmptyLine()
		r.sink.WriteLine(r.theme.Title(fmt.Sprintf("%s in %s", label, r.relativeFile(evt.TestFile))))
		r.sink.WriteLine("")
		r.writeErr(evt.Err)
		r.sink.WriteLine("")

	case events.TypeWorkerFailed:
		if st.filesWithMissingImport[evt.TestFile] {
			return
		}
		if evt.NonZeroExitCode != 0 {
			r.sink.WriteLine(r.theme.Error(fmt.Sprintf("%s %s exited with a non-zero exit code: %d", format.Cross, r.relativeFile(evt.TestFile), evt.NonZeroExitCode)))
		} else {
			r.sink.WriteLine(r.theme.Error(fmt.Sprintf("%s %s exited due to %s", format.Cross, r.relativeFile(evt.TestFile), evt.Signal)))
		}

	case events.TypeWorkerFinished:
		r.writeWorkerFinished(evt)

	case events.TypeWorkerStdout, events.TypeWorkerStderr:
		r.writeStdioChunk(evt)
	}
}

func (r *Reporter) writeTestSummary(evt *events.Event) {
	st := &r.state
	switch {
	case evt.Type == events.TypeHookFailed || evt.Type == events.TypeTestFailed:
		message := ""
		if evt.Err != nil {
			message = evt.Err.Message
		}
		r.sink.WriteLine(fmt.Sprintf("%s %s %s", r.theme.Error(format.Cross), st.prefixTitle(evt.TestFile, evt.Title), r.theme.Error(message)))
	case evt.KnownFailing:
		r.sink.WriteLine(fmt.Sprintf("%s %s", r.theme.Error(format.Tick), r.theme.Error(st.prefixTitle(evt.TestFile, evt.Title))))
	default:
		duration := ""
		if evt.Duration > r.durationThreshold {
			duration = " " + r.theme.Duration("("+format.Duration(evt.Duration)+")")
		}
		r.sink.WriteLine(fmt.Sprintf("%s %s%s", r.theme.Pass(format.Tick), st.prefixTitle(evt.TestFile, evt.Title), duration))
	}
	r.writeLogs(evt, false)
}

// writeLogs renders an event's captured log lines, each marked with an info
// glyph. It reports whether anything was written.
func (r *Reporter) writeLogs(evt *events.Event, surroundLines bool) bool {
	if len(evt.Logs) == 0 {
		return false
	}
	if surroundLines {
		r.sink.WriteLine("")
	}
	for _, entry := range evt.Logs {
		for i, line := range strings.Split(entry, "\n") {
			if i == 0 {
				r.sink.WriteLine("  " + r.theme.Information(format.Info) + " " + r.theme.Log(line))
			} else {
				r.sink.WriteLine("    " + r.theme.Log(line))
			}
		}
	}
	if surroundLines {
		r.sink.WriteLine("")
	}
	return true
}

// writePendingTests dumps the still-pending test titles carried by timeout
// and interrupt events. Files with no pending titles are skipped.
func (r *Reporter) writePendingTests(evt *events.Event) {
	files := make([]string, 0, len(evt.PendingTests))
	for file, titles := range evt.PendingTests {
		if len(titles) > 0 {
			files = append(files, file)
		}
	}
	sort.Strings(files)

	for _, file := range files {
		titles := evt.PendingTests[file]
		count := len(titles)
		r.sink.WriteLine(fmt.Sprintf("%d %s %s pending in %s", count, format.Plural("test", count), format.Verb("was", "were", count), r.relativeFile(file)))
		for _, title := range titles {
			r.sink.WriteLine(format.CircleDotted + " " + title)
		}
		r.sink.WriteLine("")
	}
}

// writeWorkerFinished decides between the mutually exclusive per-file
// messages once a worker exits cleanly. Without a stats entry for the file
// no decision is possible and nothing is written.
func (r *Reporter) writeWorkerFinished(evt *events.Event) {
	st := &r.state
	if evt.ForcedExit || st.filesWithMissingImport[evt.TestFile] {
		return
	}
	if st.stats == nil {
		return
	}
	fileStats, ok := st.stats.ByFile[evt.TestFile]
	if !ok {
		return
	}

	switch {
	case fileStats.DeclaredTests == 0:
		r.sink.WriteLine(r.theme.Error(fmt.Sprintf("%s No tests found in %s", format.Cross, r.relativeFile(evt.TestFile))))
	case fileStats.SelectingLines && fileStats.SelectedTests == 0:
		r.sink.WriteLine(r.theme.Error(fmt.Sprintf("%s Line numbers for %s did not match any tests", format.Cross, r.relativeFile(evt.TestFile))))
	case !st.failFastEnabled && fileStats.RemainingTests > 0:
		r.sink.WriteLine(r.theme.Error(fmt.Sprintf("%s %d %s remaining in %s", format.Cross, fileStats.RemainingTests, format.Plural("test", fileStats.RemainingTests), r.relativeFile(evt.TestFile))))
	}
}

// writeStdioChunk passes a worker stdio chunk through to the side channel.
// A chunk without a trailing newline gets one forced onto the report stream
// so interleaved output stays visually separated.
func (r *Reporter) writeStdioChunk(evt *events.Event) {
	if len(evt.Chunk) == 0 {
		return
	}
	_, _ = r.std.Write(evt.Chunk)
	if evt.Chunk[len(evt.Chunk)-1] != '\n' {
		r.sink.WriteRaw("\n")
	}
}

func (r *Reporter) relativeFile(file string) string {
	return format.RelativePath(r.projectDir, file)
}
