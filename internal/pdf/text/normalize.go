package text

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	blankRun        = regexp.MustCompile(`\n{3,}`)
)

// Normalize folds compatibility characters, turns carriage returns into
// newlines, collapses horizontal whitespace runs to one space and squeezes
// three or more consecutive newlines down to a single blank line.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = horizontalSpace.ReplaceAllString(s, " ")
	s = blankRun.ReplaceAllString(s, "\n\n")
	return s
}

// placeholderMarkers appear in the page a generic viewer shows instead of a
// dynamic XFA form.
var placeholderMarkers = []string{
	"Please wait",
	"Adobe Reader",
}

// placeholderMaxLen bounds the placeholder transcript; real forms are far
// longer.
const placeholderMaxLen = 2000

// IsUnrenderablePlaceholder reports whether text is the stub a viewer shows
// for an interactive form it cannot render.
func IsUnrenderablePlaceholder(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || len(trimmed) > placeholderMaxLen {
		return false
	}
	for _, marker := range placeholderMarkers {
		if !strings.Contains(trimmed, marker) {
			return false
		}
	}
	return true
}
