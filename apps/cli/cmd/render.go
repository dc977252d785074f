package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/verdictlabs/verdict/packages/config"
	"github.com/verdictlabs/verdict/packages/events"
	"github.com/verdictlabs/verdict/packages/history"
	"github.com/verdictlabs/verdict/packages/journal"
	"github.com/verdictlabs/verdict/packages/reporter"
	"github.com/verdictlabs/verdict/packages/tap"
	"github.com/verdictlabs/verdict/packages/timing"
)

var renderCmd = &cobra.Command{
	Use:   "render <journal>",
	Short: "Render a test-run journal as a terminal report",
	Long: `Render a line-delimited test-run journal as a terminal report.

The journal starts with a run-plan line followed by one event per line.
Watch-mode journals carry several run plans; each one starts a fresh
report section.

Examples:
  verdict render run.jsonl
  verdict render run.jsonl --follow
  verdict render run.jsonl --tap
  verdict render run.jsonl --history .verdict/history.db
  verdict render run.jsonl --durations --duration-threshold 250`,
	Args: cobra.ExactArgs(1),
	RunE: renderCommand,
}

var (
	followFlag            bool
	validateFlag          bool
	watchFlag             bool
	noColorFlag           bool
	tapFlag               bool
	durationsFlag         bool
	durationThresholdFlag int // milliseconds
	historyFlag           string
	projectDirFlag        string
)

func init() {
	renderCmd.Flags().BoolVarP(&followFlag, "follow", "f", getEnvBool("VERDICT_FOLLOW", false), "Keep reading as the journal grows (env: VERDICT_FOLLOW)")
	renderCmd.Flags().BoolVar(&validateFlag, "validate", getEnvBool("VERDICT_VALIDATE", false), "Validate every journal line against the event schema (env: VERDICT_VALIDATE)")
	renderCmd.Flags().BoolVarP(&watchFlag, "watch", "w", getEnvBool("VERDICT_WATCH", false), "Render as a watch session: rules between runs and end-of-run timestamps (env: VERDICT_WATCH)")
	renderCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("VERDICT_NO_COLOR", false), "Disable colored output (env: VERDICT_NO_COLOR)")
	renderCmd.Flags().BoolVar(&tapFlag, "tap", getEnvBool("VERDICT_TAP", false), "Emit TAP version 13 instead of the terminal report (env: VERDICT_TAP)")
	renderCmd.Flags().BoolVar(&durationsFlag, "durations", getEnvBool("VERDICT_DURATIONS", false), "Print a test-duration percentile breakdown after the report (env: VERDICT_DURATIONS)")
	renderCmd.Flags().IntVar(&durationThresholdFlag, "duration-threshold", getEnvInt("VERDICT_DURATION_THRESHOLD", 0), "Only show durations for passed tests above this many milliseconds (env: VERDICT_DURATION_THRESHOLD)")
	renderCmd.Flags().StringVar(&historyFlag, "history", getEnvString("VERDICT_HISTORY", ""), "Path to the run-history database (env: VERDICT_HISTORY)")
	renderCmd.Flags().StringVar(&projectDirFlag, "project-dir", getEnvString("VERDICT_PROJECT_DIR", ""), "Directory test file paths are shown relative to (env: VERDICT_PROJECT_DIR)")
}

func renderCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitConfigError)
	}
	applyConfig(cmd, cfg)

	if noColorFlag {
		color.NoColor = true
	}

	var store *history.Store
	if historyFlag != "" {
		store, err = history.Open(historyFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(ExitConfigError)
		}
		defer store.Close()
	}

	var tracker *timing.Tracker
	if durationsFlag {
		tracker = timing.NewTracker()
	}

	var validator *journal.Validator
	if validateFlag {
		validator, err = journal.NewValidator()
		if err != nil {
			return fmt.Errorf("building event schema: %w", err)
		}
	}

	session := &renderSession{
		store:     store,
		tracker:   tracker,
		validator: validator,
	}
	if tapFlag {
		session.reporter = tap.New(tap.WithWriter(cmd.OutOrStdout()))
	} else {
		session.reporter = reporter.New(reporter.Config{
			DurationThreshold: time.Duration(durationThresholdFlag) * time.Millisecond,
			Watching:          watchFlag || followFlag,
			ProjectDir:        projectDirFlag,
		})
	}

	journalPath := args[0]
	if followFlag {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		err = journal.Follow(ctx, journalPath, session.deliver)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	} else {
		err = journal.Read(journalPath, session.deliver)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitJournalError)
	}
	if !session.started {
		fmt.Fprintf(os.Stderr, "Error: no run plan found in %s\n", journalPath)
		os.Exit(ExitJournalError)
	}

	session.finishRun()
	if tracker != nil && tracker.Count() > 0 {
		tracker.WriteTo(cmd.OutOrStdout())
	}
	if session.failed {
		os.Exit(ExitTestFailure)
	}
	return nil
}

// applyConfig fills in flags the user did not set from verdict.yaml.
func applyConfig(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if !flags.Changed("no-color") && cfg.NoColor != nil {
		noColorFlag = cfg.GetNoColor()
	}
	if !flags.Changed("tap") && cfg.TAP != nil {
		tapFlag = cfg.GetTAP()
	}
	if !flags.Changed("durations") && cfg.Durations != nil {
		durationsFlag = cfg.GetDurations()
	}
	if !flags.Changed("duration-threshold") && cfg.DurationThreshold > 0 {
		durationThresholdFlag = cfg.DurationThreshold
	}
	if !flags.Changed("history") && historyFlag == "" {
		historyFlag = cfg.History
	}
	if !flags.Changed("project-dir") && projectDirFlag == "" {
		projectDirFlag = cfg.ProjectDir
	}
}

// runReporter is the surface shared by the terminal and TAP reporters.
type runReporter interface {
	StartRun(*events.Plan)
	EndRun()
}

// renderSession feeds decoded journal lines through a reporter, one run
// plan at a time.
type renderSession struct {
	reporter  runReporter
	store     *history.Store
	tracker   *timing.Tracker
	validator *journal.Validator

	status  *events.Status
	started bool
	bailed  bool
	failed  bool
	runs    int
}

func (s *renderSession) deliver(line []byte) error {
	if s.validator != nil {
		if err := s.validator.Validate(line); err != nil {
			return err
		}
	}

	if plan, ok := journal.DecodePlan(line); ok {
		if s.started {
			s.finishRun()
		}
		s.runs++
		if plan.RunVector <= 1 {
			plan.RunVector = s.runs
		}
		plan.Status = events.NewStatus()
		if plan.PreviousFailures == 0 && s.store != nil {
			if n, err := s.store.LastFailureCount(); err == nil {
				plan.PreviousFailures = n
			}
		}
		s.status = plan.Status
		s.started = true
		s.bailed = plan.BailWithoutReporting
		s.reporter.StartRun(plan)
		return nil
	}

	if s.status == nil {
		return errors.New("journal event before any run plan")
	}
	evt, err := journal.Decode(line)
	if err != nil {
		return err
	}
	if s.tracker != nil && evt.Type == events.TypeTestPassed {
		s.tracker.Record(evt.Duration)
	}
	s.status.Emit(evt)
	return nil
}

func (s *renderSession) finishRun() {
	if s.bailed {
		return
	}
	s.reporter.EndRun()

	stats := s.status.Stats()
	if stats == nil {
		return
	}
	if stats.FailedTests > 0 || stats.FailedHooks > 0 ||
		stats.UnhandledRejections > 0 || stats.UncaughtExceptions > 0 {
		s.failed = true
	}
	if s.store != nil {
		err := s.store.RecordRun(history.Run{
			FailedTests:  stats.FailedTests,
			PassedTests:  stats.PassedTests,
			SkippedTests: stats.SkippedTests,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: recording run history: %v\n", err)
		}
	}
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
