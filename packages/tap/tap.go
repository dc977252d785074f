// Package tap renders test-run events in TAP (Test Anything Protocol)
// format, as an alternative to the human-readable terminal report.
package tap

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/verdictlabs/verdict/packages/events"
)

// Reporter accumulates results during the run and writes the TAP document
// in EndRun.
type Reporter struct {
	writer      io.Writer
	count       int
	results     []result
	unsubscribe func()
}

type result struct {
	number  int
	title   string
	passed  bool
	skipped bool
	todo    bool
	message string
	values  []string
}

// Option configures the reporter.
type Option func(*Reporter)

// WithWriter sets the output writer.
func WithWriter(w io.Writer) Option {
	return func(r *Reporter) {
		r.writer = w
	}
}

// New creates a TAP reporter writing to stdout unless configured otherwise.
func New(opts ...Option) *Reporter {
	r := &Reporter{writer: os.Stdout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StartRun resets accumulated results and subscribes to the plan's events.
func (r *Reporter) StartRun(plan *events.Plan) {
	if plan == nil || plan.BailWithoutReporting {
		return
	}
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	r.count = 0
	r.results = nil
	if plan.Status != nil {
		r.unsubscribe = plan.Status.Subscribe(r.consumeStateChange)
	}
}

func (r *Reporter) consumeStateChange(evt *events.Event) {
	switch evt.Type {
	case events.TypeTestPassed:
		r.count++
		r.results = append(r.results, result{number: r.count, title: evt.Title, passed: true})

	case events.TypeTestFailed, events.TypeHookFailed:
		r.count++
		res := result{number: r.count, title: evt.Title}
		if evt.Err != nil {
			res.message = evt.Err.Message
			for _, v := range evt.Err.Values {
				res.values = append(res.values, v.Label+" "+strings.ReplaceAll(v.Formatted, "\n", " "))
			}
		}
		r.results = append(r.results, res)

	case events.TypeSelectedTest:
		if evt.Skip || evt.Todo {
			r.count++
			r.results = append(r.results, result{number: r.count, title: evt.Title, skipped: evt.Skip, todo: evt.Todo})
		}
	}
}

// EndRun writes the accumulated TAP document.
func (r *Reporter) EndRun() {
	fmt.Fprintf(r.writer, "TAP version 13\n")
	fmt.Fprintf(r.writer, "1..%d\n", r.count)

	for _, res := range r.results {
		switch {
		case res.skipped:
			fmt.Fprintf(r.writer, "ok %d - %s # SKIP\n", res.number, res.title)
		case res.todo:
			fmt.Fprintf(r.writer, "not ok %d - %s # TODO\n", res.number, res.title)
		case res.passed:
			fmt.Fprintf(r.writer, "ok %d - %s\n", res.number, res.title)
		default:
			fmt.Fprintf(r.writer, "not ok %d - %s\n", res.number, res.title)
			if res.message != "" || len(res.values) > 0 {
				fmt.Fprintf(r.writer, "  ---\n")
				if res.message != "" {
					fmt.Fprintf(r.writer, "  message: %s\n", escapeYAML(res.message))
				}
				if len(res.values) > 0 {
					fmt.Fprintf(r.writer, "  failures:\n")
					for _, v := range res.values {
						fmt.Fprintf(r.writer, "    - %s\n", escapeYAML(v))
					}
				}
				fmt.Fprintf(r.writer, "  ...\n")
			}
		}
	}

	fmt.Fprintln(r.writer)
}

// escapeYAML wraps s in quotes when it contains characters that would break
// the diagnostic block.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":\n\"'[]{}#&*!|>%@`") {
		s = strings.ReplaceAll(s, "\"", "\\\"")
		return "\"" + s + "\""
	}
	return s
}
