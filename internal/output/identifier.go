// Package output names and writes the JSON documents produced for each form.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const dateLayout = "20060102"

var (
	nameDate   = regexp.MustCompile(`\b(20\d{6})\b`)
	nameDigits = regexp.MustCompile(`\b(\d{8})\b`)
	dateDigits = regexp.MustCompile(`(20\d{2})[-/.]?(0[1-9]|1[0-2])[-/.]?(0[1-9]|[12]\d|3[01])`)
	slugRun    = regexp.MustCompile(`[^a-z0-9]+`)
)

// fieldLayouts are the spellings of the date field accepted before falling
// back to a digit scan. Month names match case-insensitively.
var fieldLayouts = []string{
	"2006-1-2",
	"1/2/2006",
	"2/1/2006",
	"2Jan2006",
	"2Jan06",
	"2 Jan 2006",
	"2 January 2006",
}

// Slugify lowercases s and joins its alphanumeric runs with single hyphens.
// An empty result becomes "draw".
func Slugify(s string) string {
	slug := strings.Trim(slugRun.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if slug == "" {
		return "draw"
	}
	return slug
}

// Stem returns the file name of path without directory or extension
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DateFromName returns an eight digit date token embedded in a file stem,
// preferring one that starts with 20.
func DateFromName(stem string) string {
	if m := nameDate.FindStringSubmatch(stem); m != nil {
		return m[1]
	}
	if m := nameDigits.FindStringSubmatch(stem); m != nil {
		return m[1]
	}
	return ""
}

// NormalizeDate converts a date field to YYYYMMDD, or "" when no known
// spelling or year-month-day digit run is found.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range fieldLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout)
		}
	}
	if m := dateDigits.FindStringSubmatch(s); m != nil {
		return m[1] + m[2] + m[3]
	}
	return ""
}

// Identifier derives the "{yyyymmdd}-{slug}" name of the output for a
// source PDF. The date comes from the file name, then the record's date
// field, then the file modification time.
func Identifier(pdfPath string, dateField *string) (string, error) {
	stem := Stem(pdfPath)

	date := DateFromName(stem)
	if date == "" && dateField != nil {
		date = NormalizeDate(*dateField)
	}
	if date == "" {
		info, err := os.Stat(pdfPath)
		if err != nil {
			return "", fmt.Errorf("cannot derive output date: %w", err)
		}
		date = info.ModTime().Format(dateLayout)
	}

	return date + "-" + Slugify(stem), nil
}

// Path returns the single-file output location inside outdir
func Path(outdir, pdfPath string, dateField *string) (string, error) {
	id, err := Identifier(pdfPath, dateField)
	if err != nil {
		return "", err
	}
	return filepath.Join(outdir, id+".json"), nil
}

// BatchName returns the per-directory batch output name
func BatchName(directoryID int, pdfPath string) string {
	return fmt.Sprintf("%04d-%s-draw.json", directoryID, Slugify(Stem(pdfPath)))
}
