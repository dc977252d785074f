// Package excerpt extracts a small, width-bounded window of source code
// around a failing line for inline display in failure reports.
package excerpt

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ContextLines is how many lines are shown above and below the target.
const ContextLines = 2

// Extract reads file and returns up to 2*ContextLines+1 numbered lines
// around line (1-based), each truncated to maxWidth display columns. The
// target line is marked with a pointer in the gutter. It reports false when
// the file cannot be read or the line is out of range.
func Extract(file string, line, maxWidth int) (string, bool) {
	data, err := os.ReadFile(file)
	if err != nil {
		return "", false
	}

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if line < 1 || line > len(lines) {
		return "", false
	}

	start := line - ContextLines
	if start < 1 {
		start = 1
	}
	end := line + ContextLines
	if end > len(lines) {
		end = len(lines)
	}

	gutterWidth := len(fmt.Sprintf("%d", end))
	var b strings.Builder
	for n := start; n <= end; n++ {
		marker := "  "
		if n == line {
			marker = "> "
		}
		text := strings.ReplaceAll(lines[n-1], "\t", "  ")
		row := fmt.Sprintf("%s%*d: %s", marker, gutterWidth, n, text)
		if maxWidth > 0 {
			row = runewidth.Truncate(row, maxWidth, "…")
		}
		b.WriteString(row)
		if n < end {
			b.WriteByte('\n')
		}
	}
	return b.String(), true
}
