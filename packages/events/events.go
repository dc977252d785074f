package events

import "time"

// Type discriminates event kinds.
type Type string

const (
	TypeHookFailed               Type = "hook-failed"
	TypeHookFinished             Type = "hook-finished"
	TypeTestFailed               Type = "test-failed"
	TypeTestPassed               Type = "test-passed"
	TypeSelectedTest             Type = "selected-test"
	TypeInternalError            Type = "internal-error"
	TypeLineNumberSelectionError Type = "line-number-selection-error"
	TypeMissingImport            Type = "missing-import"
	TypeStats                    Type = "stats"
	TypeTimeout                  Type = "timeout"
	TypeInterrupt                Type = "interrupt"
	TypeUncaughtException        Type = "uncaught-exception"
	TypeUnhandledRejection       Type = "unhandled-rejection"
	TypeWorkerFailed             Type = "worker-failed"
	TypeWorkerFinished           Type = "worker-finished"
	TypeWorkerStdout             Type = "worker-stdout"
	TypeWorkerStderr             Type = "worker-stderr"
)

// Event is a single notification from the engine. Only the fields relevant
// to the Type are populated; everything else is left at its zero value.
type Event struct {
	Type     Type
	TestFile string
	Title    string

	// Test completion details.
	Duration     time.Duration
	KnownFailing bool
	Skip         bool
	Todo         bool
	Logs         []string

	// Error payload for failures, internal errors and uncaught errors.
	Err *ErrorInfo

	// Stats snapshot, for TypeStats.
	Stats *Stats

	// Still-pending test titles per file, for TypeTimeout and TypeInterrupt.
	// Title order within a file is preserved from the engine.
	PendingTests map[string][]string

	// Worker exit details, for TypeWorkerFailed and TypeWorkerFinished.
	NonZeroExitCode int
	Signal          string
	ForcedExit      bool

	// Raw stdio chunk, for TypeWorkerStdout and TypeWorkerStderr.
	Chunk []byte
}

// SourceLocation points at the user code a failure originated from.
type SourceLocation struct {
	File string
	Line int
}

// FormattedValue is a labelled, pre-formatted payload produced by the error
// serializer: assertion diffs, actual/expected dumps, thrown values.
type FormattedValue struct {
	Label     string
	Formatted string
}

// ErrorInfo is the serialized form of an error that crossed the worker
// boundary. Every field is optional; renderers must guard each one.
type ErrorInfo struct {
	Message string
	Summary string
	Stack   string

	// Diagnostic text produced by a compilation step. When present it
	// replaces all other rendering, including the stack.
	CompilerDiagnostic string

	Source *SourceLocation
	Values []FormattedValue

	// Pre-formatted representation of a thrown non-error value.
	Formatted string

	// Hint text for recognizable assertion misuse.
	ImproperUsage string

	AssertionError bool
	NonErrorObject bool
	BeautifyStack  bool

	// Whether the serializer decided the message is worth showing on top
	// of the formatted values.
	PrintMessage bool
}
