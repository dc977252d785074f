package journal

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"github.com/verdictlabs/verdict/packages/events"
)

// planType marks the journal's run header line.
const planType = "run-plan"

// maxLineBytes bounds a single journal line; stdio chunks can get large.
const maxLineBytes = 4 * 1024 * 1024

// Decode parses one journal line into an Event. Unknown event types decode
// fine; consumers ignore them.
func Decode(line []byte) (*events.Event, error) {
	if !gjson.ValidBytes(line) {
		return nil, fmt.Errorf("journal line is not valid JSON")
	}
	root := gjson.ParseBytes(line)
	typ := root.Get("type").String()
	if typ == "" {
		return nil, fmt.Errorf("journal line has no type")
	}

	evt := &events.Event{
		Type:            events.Type(typ),
		TestFile:        root.Get("testFile").String(),
		Title:           root.Get("title").String(),
		Duration:        time.Duration(root.Get("duration").Float() * float64(time.Millisecond)),
		KnownFailing:    root.Get("knownFailing").Bool(),
		Skip:            root.Get("skip").Bool(),
		Todo:            root.Get("todo").Bool(),
		NonZeroExitCode: int(root.Get("nonZeroExitCode").Int()),
		Signal:          root.Get("signal").String(),
		ForcedExit:      root.Get("forcedExit").Bool(),
	}

	for _, log := range root.Get("logs").Array() {
		evt.Logs = append(evt.Logs, log.String())
	}

	if chunk := root.Get("chunk"); chunk.Exists() {
		evt.Chunk = []byte(chunk.String())
	}

	if errResult := root.Get("err"); errResult.Exists() {
		evt.Err = decodeErr(errResult)
	}

	if stats := root.Get("stats"); stats.Exists() {
		evt.Stats = decodeStats(stats)
	}

	if pending := root.Get("pendingTests"); pending.Exists() {
		evt.PendingTests = make(map[string][]string)
		pending.ForEach(func(file, titles gjson.Result) bool {
			list := []string{}
			for _, title := range titles.Array() {
				list = append(list, title.String())
			}
			evt.PendingTests[file.String()] = list
			return true
		})
	}

	return evt, nil
}

// DecodePlan parses a run-plan header line. It reports false when the line
// is not a plan.
func DecodePlan(line []byte) (*events.Plan, bool) {
	if !gjson.ValidBytes(line) {
		return nil, false
	}
	root := gjson.ParseBytes(line)
	if root.Get("type").String() != planType {
		return nil, false
	}

	plan := &events.Plan{
		BailWithoutReporting: root.Get("bailWithoutReporting").Bool(),
		FailFastEnabled:      root.Get("failFastEnabled").Bool(),
		Matching:             root.Get("matching").Bool(),
		PreviousFailures:     int(root.Get("previousFailures").Int()),
		FilePathPrefix:       root.Get("filePathPrefix").String(),
		RunVector:            int(root.Get("runVector").Int()),
	}
	for _, file := range root.Get("files").Array() {
		plan.Files = append(plan.Files, file.String())
	}
	if plan.RunVector == 0 {
		plan.RunVector = 1
	}
	return plan, true
}

func decodeErr(result gjson.Result) *events.ErrorInfo {
	e := &events.ErrorInfo{
		Message:            result.Get("message").String(),
		Summary:            result.Get("summary").String(),
		Stack:              result.Get("stack").String(),
		CompilerDiagnostic: result.Get("compilerDiagnostic").String(),
		Formatted:          result.Get("formatted").String(),
		ImproperUsage:      result.Get("improperUsage").String(),
		AssertionError:     result.Get("assertionError").Bool(),
		NonErrorObject:     result.Get("nonErrorObject").Bool(),
		BeautifyStack:      result.Get("shouldBeautifyStack").Bool(),
		PrintMessage:       result.Get("printMessage").Bool(),
	}

	if src := result.Get("source"); src.Exists() {
		e.Source = &events.SourceLocation{
			File: src.Get("file").String(),
			Line: int(src.Get("line").Int()),
		}
	}

	for _, v := range result.Get("values").Array() {
		e.Values = append(e.Values, events.FormattedValue{
			Label:     v.Get("label").String(),
			Formatted: v.Get("formatted").String(),
		})
	}

	return e
}

func decodeStats(result gjson.Result) *events.Stats {
	s := &events.Stats{
		ByFile:                  make(map[string]events.FileStats),
		Files:                   int(result.Get("files").Int()),
		FinishedWorkers:         int(result.Get("finishedWorkers").Int()),
		RemainingTests:          int(result.Get("remainingTests").Int()),
		SelectedTests:           int(result.Get("selectedTests").Int()),
		FailedHooks:             int(result.Get("failedHooks").Int()),
		FailedTests:             int(result.Get("failedTests").Int()),
		PassedTests:             int(result.Get("passedTests").Int()),
		PassedKnownFailingTests: int(result.Get("passedKnownFailingTests").Int()),
		SkippedTests:            int(result.Get("skippedTests").Int()),
		TodoTests:               int(result.Get("todoTests").Int()),
		UnhandledRejections:     int(result.Get("unhandledRejections").Int()),
		UncaughtExceptions:      int(result.Get("uncaughtExceptions").Int()),
		EmptyParallelRun:        result.Get("emptyParallelRun").Bool(),
	}

	result.Get("byFile").ForEach(func(file, fs gjson.Result) bool {
		s.ByFile[file.String()] = events.FileStats{
			DeclaredTests:  int(fs.Get("declaredTests").Int()),
			SelectedTests:  int(fs.Get("selectedTests").Int()),
			RemainingTests: int(fs.Get("remainingTests").Int()),
			SelectingLines: fs.Get("selectingLines").Bool(),
		}
		return true
	})

	if pr := result.Get("parallelRuns"); pr.Exists() {
		s.ParallelRuns = &events.ParallelRuns{
			CurrentFileCount: int(pr.Get("currentFileCount").Int()),
			CurrentIndex:     int(pr.Get("currentIndex").Int()),
			TotalRuns:        int(pr.Get("totalRuns").Int()),
		}
	}

	return s
}

// Read replays every complete line already in the journal, in order.
func Read(path string, deliver func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := deliver(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading journal: %w", err)
	}
	return nil
}
