package textparse

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/a3tai/draw-parser/internal/draw"
)

const bulletGlyphs = "-•*○▪"

func isBullet(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	return strings.ContainsRune(bulletGlyphs, r)
}

// groupControls reassembles wrapped control lines into items. A bullet line
// always opens a new item, as does a capitalized line after one ending in
// sentence punctuation unless it reads as a conjunction continuation.
func groupControls(v *draw.Vocabulary, lines []string) []string {
	var items []string
	var current []string

	flush := func() {
		if text := strings.TrimSpace(strings.Join(current, " ")); text != "" {
			items = append(items, stripBullet(text))
		}
	}

	for _, raw := range lines {
		line := draw.Collapse(raw)
		if line == "" {
			continue
		}
		if len(current) > 0 && startsNewItem(v, current[len(current)-1], line) {
			flush()
			current = nil
		}
		current = append(current, line)
	}
	flush()

	return items
}

func startsNewItem(v *draw.Vocabulary, prev, line string) bool {
	if isBullet(line) {
		return true
	}
	if !strings.HasSuffix(prev, ".") && !strings.HasSuffix(prev, "!") && !strings.HasSuffix(prev, "?") {
		return false
	}
	first, _ := utf8.DecodeRuneInString(line)
	if !unicode.IsUpper(first) {
		return false
	}
	lower := strings.ToLower(line)
	for _, word := range v.ContinuationWords {
		if strings.HasPrefix(lower, strings.ToLower(word)+" ") {
			return false
		}
	}
	return true
}

// stripBullet removes a leading bullet glyph and the space after it
func stripBullet(item string) string {
	trimmed := strings.TrimLeft(item, bulletGlyphs)
	if trimmed = strings.TrimSpace(trimmed); trimmed == "" {
		return item
	}
	return trimmed
}
