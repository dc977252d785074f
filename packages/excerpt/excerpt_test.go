package excerpt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.js")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractWindowsAroundLine(t *testing.T) {
	path := writeSource(t, "one\ntwo\nthree\nfour\nfive\nsix\n")

	out, ok := Extract(path, 3, 80)
	require.True(t, ok)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "  1: one", lines[0])
	assert.Equal(t, "> 3: three", lines[2])
	assert.Equal(t, "  5: five", lines[4])
}

func TestExtractClampsAtFileEdges(t *testing.T) {
	path := writeSource(t, "one\ntwo\n")

	out, ok := Extract(path, 1, 80)
	require.True(t, ok)
	assert.Len(t, strings.Split(out, "\n"), 2)
}

func TestExtractTruncatesWideLines(t *testing.T) {
	path := writeSource(t, strings.Repeat("x", 200)+"\n")

	out, ok := Extract(path, 1, 20)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(out, "…"))
}

func TestExtractOutOfRange(t *testing.T) {
	path := writeSource(t, "one\n")

	_, ok := Extract(path, 9, 80)
	assert.False(t, ok)

	_, ok = Extract(filepath.Join(t.TempDir(), "missing.js"), 1, 80)
	assert.False(t, ok)
}
