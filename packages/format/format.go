// Package format provides the terminal formatting helpers shared by the
// reporters: semantic color roles, figure glyphs, pluralization, duration
// formatting and file path display.
package format

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Figure glyphs used across the reporters.
const (
	Tick         = "✔"
	Cross        = "✖"
	Info         = "ℹ"
	Warning      = "⚠"
	Pointer      = "›"
	CircleDotted = "◌"
)

// TitleSeparator joins path segments and titles in prefixed test titles.
const TitleSeparator = " " + Pointer + " "

// Theme maps semantic roles to colorizers. Construct with NewTheme; the
// fatih/color package honours the global NoColor switch.
type Theme struct {
	Pass        func(a ...interface{}) string
	Error       func(a ...interface{}) string
	Skip        func(a ...interface{}) string
	Todo        func(a ...interface{}) string
	Title       func(a ...interface{}) string
	Duration    func(a ...interface{}) string
	ErrorSource func(a ...interface{}) string
	ErrorStack  func(a ...interface{}) string
	StackFrame  func(a ...interface{}) string
	Information func(a ...interface{}) string
	Log         func(a ...interface{}) string
	Dim         func(a ...interface{}) string
}

// NewTheme creates the default theme.
func NewTheme() *Theme {
	return &Theme{
		Pass:        color.New(color.FgGreen).SprintFunc(),
		Error:       color.New(color.FgRed).SprintFunc(),
		Skip:        color.New(color.FgYellow).SprintFunc(),
		Todo:        color.New(color.FgBlue).SprintFunc(),
		Title:       color.New(color.Bold).SprintFunc(),
		Duration:    color.New(color.Faint).SprintFunc(),
		ErrorSource: color.New(color.FgHiBlack).SprintFunc(),
		ErrorStack:  color.New(color.FgRed).SprintFunc(),
		StackFrame:  color.New(color.Faint).SprintFunc(),
		Information: color.New(color.FgMagenta).SprintFunc(),
		Log:         color.New(color.FgHiBlack).SprintFunc(),
		Dim:         color.New(color.Faint).SprintFunc(),
	}
}

// Plural returns word with a plural "s" when n is not 1.
func Plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// Verb returns the singular verb when n is 1 and the plural form otherwise,
// e.g. Verb("was", "were", 2) == "were".
func Verb(singular, plural string, n int) string {
	if n == 1 {
		return singular
	}
	return plural
}

// Duration renders d compactly: milliseconds below a second, one decimal of
// seconds below a minute, minutes and seconds above that.
func Duration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		m := int(d.Minutes())
		s := int(d.Seconds()) - m*60
		return fmt.Sprintf("%dm %ds", m, s)
	}
}

// PrefixTitle derives a display title from a test file and a test title.
// The shared prefix and the file extension are stripped and the remaining
// path segments are joined with the title separator, so
// "test/api/users.test.js" with prefix "test/" and title "creates a user"
// becomes "api › users.test › creates a user".
func PrefixTitle(prefix, file, title string) string {
	p := strings.TrimPrefix(file, prefix)
	p = strings.TrimSuffix(p, filepath.Ext(p))

	segments := strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	segments = append(segments, title)
	return strings.Join(segments, TitleSeparator)
}

// CommonPathPrefix computes the longest directory prefix shared by all
// paths, including the trailing separator. It returns "" when the paths
// share nothing.
func CommonPathPrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}

	prefix := paths[0]
	if i := strings.LastIndexByte(prefix, '/'); i >= 0 {
		prefix = prefix[:i+1]
	} else {
		return ""
	}

	for _, p := range paths[1:] {
		for !strings.HasPrefix(p, prefix) {
			trimmed := strings.TrimSuffix(prefix, "/")
			i := strings.LastIndexByte(trimmed, '/')
			if i < 0 {
				return ""
			}
			prefix = trimmed[:i+1]
		}
	}
	return prefix
}

// RelativePath renders file relative to projectDir when possible, falling
// back to the path as given.
func RelativePath(projectDir, file string) string {
	if projectDir == "" {
		return file
	}
	rel, err := filepath.Rel(projectDir, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return file
	}
	return rel
}
