package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdictlabs/verdict/packages/events"
)

func TestDecodeTestPassed(t *testing.T) {
	line := []byte(`{"type":"test-passed","testFile":"test.js","title":"adds","duration":5,"knownFailing":true,"logs":["a","b"]}`)

	evt, err := Decode(line)
	require.NoError(t, err)

	assert.Equal(t, events.TypeTestPassed, evt.Type)
	assert.Equal(t, "test.js", evt.TestFile)
	assert.Equal(t, "adds", evt.Title)
	assert.Equal(t, 5*time.Millisecond, evt.Duration)
	assert.True(t, evt.KnownFailing)
	assert.Equal(t, []string{"a", "b"}, evt.Logs)
}

func TestDecodeFailureWithError(t *testing.T) {
	line := []byte(`{"type":"test-failed","testFile":"t.js","title":"breaks","err":{
		"message":"boom","summary":"Error: boom","stack":"at x","assertionError":true,
		"printMessage":true,"shouldBeautifyStack":true,
		"source":{"file":"t.js","line":3},
		"values":[{"label":"Difference:","formatted":"- 1\n+ 2"}]}}`)

	evt, err := Decode(line)
	require.NoError(t, err)
	require.NotNil(t, evt.Err)

	assert.Equal(t, "boom", evt.Err.Message)
	assert.True(t, evt.Err.AssertionError)
	assert.True(t, evt.Err.PrintMessage)
	assert.True(t, evt.Err.BeautifyStack)
	require.NotNil(t, evt.Err.Source)
	assert.Equal(t, 3, evt.Err.Source.Line)
	require.Len(t, evt.Err.Values, 1)
	assert.Equal(t, "Difference:", evt.Err.Values[0].Label)
}

func TestDecodeStats(t *testing.T) {
	line := []byte(`{"type":"stats","stats":{
		"byFile":{"t.js":{"declaredTests":3,"selectedTests":2,"remainingTests":1,"selectingLines":true}},
		"files":1,"finishedWorkers":1,"passedTests":2,"failedTests":0,"selectedTests":2,
		"parallelRuns":{"currentFileCount":1,"currentIndex":0,"totalRuns":2}}}`)

	evt, err := Decode(line)
	require.NoError(t, err)
	require.NotNil(t, evt.Stats)

	fs, ok := evt.Stats.ByFile["t.js"]
	require.True(t, ok)
	assert.Equal(t, 3, fs.DeclaredTests)
	assert.True(t, fs.SelectingLines)
	require.NotNil(t, evt.Stats.ParallelRuns)
	assert.Equal(t, 2, evt.Stats.ParallelRuns.TotalRuns)
}

func TestDecodePendingTests(t *testing.T) {
	line := []byte(`{"type":"timeout","pendingTests":{"file.js":["a","b"],"empty.js":[]}}`)

	evt, err := Decode(line)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, evt.PendingTests["file.js"])
	assert.Empty(t, evt.PendingTests["empty.js"])
}

func TestDecodeUnknownTypePassesThrough(t *testing.T) {
	evt, err := Decode([]byte(`{"type":"future-thing","testFile":"t.js"}`))
	require.NoError(t, err)
	assert.Equal(t, events.Type("future-thing"), evt.Type)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"title":"no type"}`))
	assert.Error(t, err)
}

func TestDecodePlan(t *testing.T) {
	line := []byte(`{"type":"run-plan","files":["a.js","b.js"],"failFastEnabled":true,"matching":true,"previousFailures":2,"filePathPrefix":"test/","runVector":3}`)

	plan, ok := DecodePlan(line)
	require.True(t, ok)
	assert.Equal(t, []string{"a.js", "b.js"}, plan.Files)
	assert.True(t, plan.FailFastEnabled)
	assert.True(t, plan.Matching)
	assert.Equal(t, 2, plan.PreviousFailures)
	assert.Equal(t, "test/", plan.FilePathPrefix)
	assert.Equal(t, 3, plan.RunVector)

	_, ok = DecodePlan([]byte(`{"type":"test-passed"}`))
	assert.False(t, ok)
}

func TestDecodePlanDefaultsRunVector(t *testing.T) {
	plan, ok := DecodePlan([]byte(`{"type":"run-plan","files":["a.js"]}`))
	require.True(t, ok)
	assert.Equal(t, 1, plan.RunVector)
}

func TestValidator(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	assert.NoError(t, v.Validate([]byte(`{"type":"test-passed","title":"x","duration":1}`)))
	assert.Error(t, v.Validate([]byte(`{"title":"missing type"}`)))
	assert.Error(t, v.Validate([]byte(`{"type":"test-passed","duration":-1}`)))
	assert.Error(t, v.Validate([]byte(`{"type":"test-failed","err":{"source":{"file":"x"}}}`)))
}

func TestReadDeliversLinesInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	content := `{"type":"run-plan","files":["a.js"]}` + "\n" +
		`{"type":"test-passed","title":"one"}` + "\n" +
		"\n" + // blank lines are skipped
		`{"type":"test-passed","title":"two"}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var lines []string
	err := Read(path, func(line []byte) error {
		lines = append(lines, string(line))
		return nil
	})
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "one")
	assert.Contains(t, lines[2], "two")
}

func TestFollowDeliversAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"test-passed","title":"first"}`+"\n"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, path, func(line []byte) error {
			got <- string(line)
			return nil
		})
	}()

	require.Contains(t, <-got, "first")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"type":"test-passed","title":"second"}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Contains(t, <-got, "second")

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestFollowStopsOnDeliverError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))

	err := Follow(context.Background(), path, func([]byte) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}
