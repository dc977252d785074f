package reporter

import "github.com/verdictlabs/verdict/packages/events"

// runState is the mutable aggregate state for one run. It is owned by a
// single Reporter and reset before every run.
type runState struct {
	failures      []*events.Event
	knownFailures []*events.Event

	// Files for which a missing harness import was already reported;
	// later worker messages for these files are suppressed.
	filesWithMissingImport map[string]bool

	failFastEnabled  bool
	matching         bool
	emptyParallelRun bool
	previousFailures int

	// prefixTitle turns a test file and title into a display title.
	// Identity for single-file runs outside watch mode.
	prefixTitle func(file, title string) string

	// Latest stats snapshot; authoritative for per-file final counts.
	stats *events.Stats

	unsubscribe func()
}

// reset returns the state to empty. It tears down any active event
// subscription and is safe to call repeatedly, including before any event
// was consumed.
func (st *runState) reset() {
	if st.unsubscribe != nil {
		st.unsubscribe()
		st.unsubscribe = nil
	}

	st.failures = nil
	st.knownFailures = nil
	st.filesWithMissingImport = make(map[string]bool)
	st.failFastEnabled = false
	st.matching = false
	st.emptyParallelRun = false
	st.previousFailures = 0
	st.stats = nil
	st.prefixTitle = func(_, title string) string { return title }
}
