package events

// FileStats holds the per-file counters the engine maintains. Individual
// completion events carry no counts, so these are the authoritative source
// for final per-file numbers.
type FileStats struct {
	DeclaredTests  int
	SelectedTests  int
	RemainingTests int
	SelectingLines bool
}

// ParallelRuns describes this invocation's slice of a file set that was
// split across multiple concurrent runs.
type ParallelRuns struct {
	CurrentFileCount int
	CurrentIndex     int
	TotalRuns        int
}

// Stats is an aggregate snapshot of the run. The engine emits a fresh one
// whenever the counters change; the latest snapshot wins.
type Stats struct {
	ByFile map[string]FileStats

	Files           int
	FinishedWorkers int
	RemainingTests  int
	SelectedTests   int

	FailedHooks             int
	FailedTests             int
	PassedTests             int
	PassedKnownFailingTests int
	SkippedTests            int
	TodoTests               int
	UnhandledRejections     int
	UncaughtExceptions      int

	ParallelRuns     *ParallelRuns
	EmptyParallelRun bool
}
