// Package trace classifies stack-trace frames into user code and harness
// internals so reporters can mute the noise around the frames that matter.
package trace

import (
	"regexp"
	"strings"
)

// Frame is one line of a stack trace.
type Frame struct {
	Text     string
	Internal bool
}

// Patterns recognising frames that originate from the test harness, its
// worker runtime or installed dependencies rather than from user code.
var internalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[/\\]node_modules[/\\]`),
	regexp.MustCompile(`[/\\]verdict[/\\](?:harness|worker|runtime)[/\\]`),
	regexp.MustCompile(`^\s*at\s+node:`),
	regexp.MustCompile(`^\s*at\s+internal[/\\]`),
}

// IsInternal reports whether the frame line matches any known
// internal-runtime pattern.
func IsInternal(line string) bool {
	for _, p := range internalPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// Split breaks a raw stack into frames, preserving order and duplicates.
// Blank lines are dropped.
func Split(stack string) []Frame {
	var frames []Frame
	for _, line := range strings.Split(stack, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		frames = append(frames, Frame{
			Text:     strings.TrimSpace(line),
			Internal: IsInternal(line),
		})
	}
	return frames
}
