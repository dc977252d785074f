package tap

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdictlabs/verdict/packages/events"
)

func runTAP(t *testing.T, evts ...*events.Event) string {
	t.Helper()

	var buf bytes.Buffer
	r := New(WithWriter(&buf))
	status := events.NewStatus()
	r.StartRun(&events.Plan{Files: []string{"t.js"}, RunVector: 1, Status: status})

	for _, evt := range evts {
		status.Emit(evt)
	}
	r.EndRun()
	return buf.String()
}

func TestTAPPassFailSkip(t *testing.T) {
	out := runTAP(t,
		&events.Event{Type: events.TypeTestPassed, Title: "adds"},
		&events.Event{Type: events.TypeTestFailed, Title: "breaks", Err: &events.ErrorInfo{Message: "boom"}},
		&events.Event{Type: events.TypeSelectedTest, Title: "later", Skip: true},
	)

	assert.True(t, strings.HasPrefix(out, "TAP version 13\n1..3\n"))
	assert.Contains(t, out, "ok 1 - adds\n")
	assert.Contains(t, out, "not ok 2 - breaks\n")
	assert.Contains(t, out, "  message: boom\n")
	assert.Contains(t, out, "ok 3 - later # SKIP\n")
}

func TestTAPTodo(t *testing.T) {
	out := runTAP(t, &events.Event{Type: events.TypeSelectedTest, Title: "someday", Todo: true})
	assert.Contains(t, out, "not ok 1 - someday # TODO\n")
}

func TestTAPFailureDiagnosticValues(t *testing.T) {
	out := runTAP(t, &events.Event{
		Type:  events.TypeTestFailed,
		Title: "compares",
		Err: &events.ErrorInfo{
			Message: "values differ",
			Values:  []events.FormattedValue{{Label: "Difference:", Formatted: "- 1\n+ 2"}},
		},
	})

	require.Contains(t, out, "  failures:\n")
	assert.Contains(t, out, `"Difference: - 1 + 2"`)
}

func TestTAPSelectionOfRunnableTestIsSilent(t *testing.T) {
	out := runTAP(t, &events.Event{Type: events.TypeSelectedTest, Title: "runs"})
	assert.True(t, strings.HasPrefix(out, "TAP version 13\n1..0\n"))
}

func TestTAPEscapesYAML(t *testing.T) {
	assert.Equal(t, "plain", escapeYAML("plain"))
	assert.Equal(t, `"with: colon"`, escapeYAML("with: colon"))
	assert.Equal(t, `"say \"hi\""`, escapeYAML(`say "hi"`))
}
