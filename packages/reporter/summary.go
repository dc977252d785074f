package reporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/verdictlabs/verdict/packages/events"
	"github.com/verdictlabs/verdict/packages/format"
)

// EndRun renders the end-of-run summary from the final run state and the
// last stats snapshot. It reads state without mutating it, save for the
// one-shot watch timestamp suffix.
func (r *Reporter) EndRun() {
	r.sink.Cork()
	defer r.sink.Uncork()
	st := &r.state

	// In watch mode the first summary line to render carries a timestamp
	// suffix; taking it clears it.
	suffix := ""
	if r.watching {
		suffix = " " + r.theme.Dim("["+time.Now().Format("15:04:05")+"]")
	}
	takeSuffix := func() string {
		s := suffix
		suffix = ""
		return s
	}

	r.sink.WriteLine("")

	switch {
	case st.emptyParallelRun || (st.stats != nil && st.stats.EmptyParallelRun):
		r.sink.WriteLine(r.theme.Information("No files tested in this parallel run"))
		r.sink.WriteLine("")
		return
	case st.stats == nil:
		r.sink.WriteLine(r.theme.Error(format.Cross+" Couldn't find any files to test") + takeSuffix())
		r.sink.WriteLine("")
		return
	case st.matching && st.stats.SelectedTests == 0:
		r.sink.WriteLine(r.theme.Error(format.Cross+" Couldn't find any matching tests") + takeSuffix())
		r.sink.WriteLine("")
		return
	}

	stats := st.stats
	r.writeRule()
	r.sink.WriteLine("")

	if len(st.failures) > 0 {
		last := st.failures[len(st.failures)-1]
		for _, evt := range st.failures {
			r.writeFailure(evt)
			if evt != last {
				r.sink.WriteLine("")
				r.sink.WriteLine("")
			}
		}
		r.sink.WriteLine("")
		r.writeRule()
		r.sink.WriteLine("")
	}

	if st.failFastEnabled && (stats.RemainingTests > 0 || stats.Files > stats.FinishedWorkers) {
		r.sink.WriteLine(r.theme.Information("`--fail-fast` is on. " + failFastNotice(stats) + "."))
		r.sink.WriteLine("")
	}

	if pr := stats.ParallelRuns; pr != nil {
		r.sink.WriteLine(r.theme.Information(fmt.Sprintf("Ran %d %s out of %d for job %d of %d", pr.CurrentFileCount, format.Plural("test file", pr.CurrentFileCount), stats.Files, pr.CurrentIndex+1, pr.TotalRuns)))
		r.sink.WriteLine("")
	}

	if n := stats.FailedHooks; n > 0 {
		r.sink.WriteLine(r.theme.Error(fmt.Sprintf("%d %s failed", n, format.Plural("hook", n))) + takeSuffix())
	}
	if n := stats.FailedTests; n > 0 {
		r.sink.WriteLine(r.theme.Error(fmt.Sprintf("%d %s failed", n, format.Plural("test", n))) + takeSuffix())
	}
	if stats.FailedHooks == 0 && stats.FailedTests == 0 && stats.PassedTests > 0 {
		n := stats.PassedTests
		r.sink.WriteLine(r.theme.Pass(fmt.Sprintf("%d %s passed", n, format.Plural("test", n))) + takeSuffix())
	}
	if n := stats.PassedKnownFailingTests; n > 0 {
		r.sink.WriteLine(r.theme.Error(fmt.Sprintf("%d known %s", n, format.Plural("failure", n))))
	}
	if n := stats.SkippedTests; n > 0 {
		r.sink.WriteLine(r.theme.Skip(fmt.Sprintf("%d %s skipped", n, format.Plural("test", n))))
	}
	if n := stats.TodoTests; n > 0 {
		r.sink.WriteLine(r.theme.Todo(fmt.Sprintf("%d %s todo", n, format.Plural("test", n))))
	}
	if n := stats.UnhandledRejections; n > 0 {
		r.sink.WriteLine(r.theme.Error(fmt.Sprintf("%d unhandled %s", n, format.Plural("rejection", n))))
	}
	if n := stats.UncaughtExceptions; n > 0 {
		r.sink.WriteLine(r.theme.Error(fmt.Sprintf("%d uncaught %s", n, format.Plural("exception", n))))
	}
	if n := st.previousFailures; n > 0 {
		r.sink.WriteLine(r.theme.Error(fmt.Sprintf("%d previous %s in test files that were not rerun", n, format.Plural("failure", n))))
	}

	if stats.PassedKnownFailingTests > 0 {
		r.sink.WriteLine("")
		for _, evt := range st.knownFailures {
			r.sink.WriteLine(r.theme.Error(st.prefixTitle(evt.TestFile, evt.Title)))
		}
	}

	if r.watching {
		r.sink.WriteLine("")
	}
}

// writeFailure renders one entry of the repeated-failures block: title,
// logs (or a blank line when there are none), then the full error render.
func (r *Reporter) writeFailure(evt *events.Event) {
	r.sink.WriteLine(r.theme.Title(r.state.prefixTitle(evt.TestFile, evt.Title)))
	if !r.writeLogs(evt, true) {
		r.sink.WriteLine("")
	}
	r.writeErr(evt.Err)
}

func (r *Reporter) writeRule() {
	r.sink.WriteLine(r.theme.Dim(strings.Repeat("─", r.columns)))
}

// failFastNotice builds the skipped-work notice. Test and file counts are
// each optional and joined with "as well as" when both are present; verb
// agreement follows the leading count.
func failFastNotice(stats *events.Stats) string {
	tests := stats.RemainingTests
	files := stats.Files - stats.FinishedWorkers

	switch {
	case tests > 0 && files > 0:
		return fmt.Sprintf("At least %d %s %s skipped, as well as %d %s",
			tests, format.Plural("test", tests), format.Verb("was", "were", tests),
			files, format.Plural("test file", files))
	case tests > 0:
		return fmt.Sprintf("At least %d %s %s skipped",
			tests, format.Plural("test", tests), format.Verb("was", "were", tests))
	default:
		return fmt.Sprintf("At least %d %s %s skipped",
			files, format.Plural("test file", files), format.Verb("was", "were", files))
	}
}
