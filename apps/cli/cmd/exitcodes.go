package cmd

// Exit codes for the verdict CLI
const (
	// ExitSuccess indicates the rendered run had no failures
	ExitSuccess = 0

	// ExitTestFailure indicates the rendered run had failing tests,
	// failed hooks, unhandled rejections or uncaught exceptions
	ExitTestFailure = 1

	// ExitJournalError indicates an unreadable or malformed journal
	ExitJournalError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
