package textparse

import (
	"regexp"
	"strings"

	"github.com/a3tai/draw-parser/internal/draw"
)

// Section windows. Each pattern captures the body between a numbered block
// header and the header that follows it on the printed form.
var (
	missionSection     = regexp.MustCompile(`(?is)1\.\s*MISSION/TASK.*?\n(.+?)(?:\n2\.\s*DATE|\z)`)
	dateSection        = regexp.MustCompile(`(?is)2\.\s*DATE PREPARED.*?\n(.+?)(?:\n3\.\s*PREPARED|\z)`)
	preparedSection    = regexp.MustCompile(`(?is)3\.\s*PREPARED\s+BY(.*?)(?:\n\s*4\.\s|\z)`)
	tableSection       = regexp.MustCompile(`(?is)9\.\s*RESIDUAL.*?RISK LEVEL.*?\n(.*?)(?:\n10\.\s|\z)`)
	overallSection     = regexp.MustCompile(`(?is)10\.\s*OVERALL\s+RESIDUAL\s+RISK LEVEL.*?:\s*(.+?)(?:\n11\.\s|\n12\.\s|\z)`)
	supervisionSection = regexp.MustCompile(`(?is)11\.\s*OVERALL SUPERVISION PLAN.*?:\s*(.+?)(?:\n(?:APPROVE|DISAPPROVE|12\.|14\.|15\.)|\z)`)
	approvalSection    = regexp.MustCompile(`(?is)(12\.\s*APPROVAL\s+OR\s+DISAPPROVAL.*?)(?:\n13\.\s|\nRISK ASSESSMENT MATRIX|\z)`)
)

// section returns the first capture of re in text, or ""
func section(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// singleValue returns a section body collapsed onto one line
func singleValue(re *regexp.Regexp, text string) *string {
	return draw.Optional(draw.Collapse(section(re, text)))
}

// Prepared-by sub-field boundaries
var (
	nextLetterLine   = regexp.MustCompile(`(?i)(?:^|\n)\s*[a-i]\.\s`)
	nextLetterInline = regexp.MustCompile(`(?i)\s{2,}[a-i]\.\s`)
	nextNumbered     = regexp.MustCompile(`(?:^|\n)\s*\d+\.\s`)
)

// instructional text that some exports print inside block 3
var preparedBoilerplate = []*regexp.Regexp{
	regexp.MustCompile(`(?is)\(1\)\s*Identify the hazards.*?equal to numbered items on form\)`),
	regexp.MustCompile(`(?is)Five steps of Risk Management:.*?equal to numbered items on form\)`),
}

// printed captions of the nine lettered fields
var captions = map[byte]*regexp.Regexp{
	'a': caption(`NAME`),
	'b': caption(`RANK\s*/?\s*GRADE`),
	'c': caption(`DUTY\s*TITLE\s*/?\s*POSITION`),
	'd': caption(`UNIT`),
	'e': caption(`WORK\s*EMAIL`),
	'f': caption(`TELEPHONE`),
	'g': caption(`UIC\s*/?\s*CIN`),
	'h': caption(`TRAINING\s*SUPPORT/LESSON\s*PLAN\s*OR\s*OPORD`),
	'i': caption(`SIGNATURE\s*OF\s*PREPARER`),
}

var letterLabels = map[byte]*regexp.Regexp{}

func init() {
	for letter := range captions {
		letterLabels[letter] = regexp.MustCompile(`(?i)(?:^|\n)\s*` + string(letter) + `\.\s*`)
	}
}

func caption(words string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^` + words + `(?:\s*\([^)]*\))?\s*[:\-]?\s*`)
}

// preparedBy reads block 3. The search is limited to the block when its
// header is present, else it runs over the whole transcript.
func (p *Parser) preparedBy(text string) draw.PreparedBy {
	window := text
	if m := preparedSection.FindStringSubmatch(text); m != nil {
		window = m[1]
	}

	fields := draw.PreparedBy{
		Name:      lettered(window, 'a'),
		RankGrade: lettered(window, 'b'),
		DutyTitle: lettered(window, 'c'),
		Unit:      lettered(window, 'd'),
		WorkEmail: lettered(window, 'e'),
		Telephone: lettered(window, 'f'),
		UICCIN:    lettered(window, 'g'),
		Reference: lettered(window, 'h'),
		Signature: lettered(window, 'i'),
	}

	if fields.Signature != nil {
		lower := strings.ToLower(*fields.Signature)
		for _, phrase := range p.vocab.SignatureBoilerplate {
			if strings.Contains(lower, strings.ToLower(phrase)) {
				fields.Signature = nil
				break
			}
		}
	}
	return fields
}

// lettered captures the value printed after "<letter>." up to the next
// lettered or numbered marker, minus the field caption.
func lettered(text string, letter byte) *string {
	loc := letterLabels[letter].FindStringIndex(text)
	if loc == nil {
		return nil
	}
	remainder := text[loc[1]:]

	cutoff := len(remainder)
	for _, re := range []*regexp.Regexp{nextLetterLine, nextLetterInline, nextNumbered} {
		if m := re.FindStringIndex(remainder); m != nil && m[0] < cutoff {
			cutoff = m[0]
		}
	}
	window := strings.TrimSpace(remainder[:cutoff])
	for _, re := range preparedBoilerplate {
		window = strings.TrimSpace(re.ReplaceAllString(window, ""))
	}

	var lines []string
	for _, line := range strings.Split(window, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	if cleaned := strings.TrimSpace(captions[letter].ReplaceAllString(lines[0], "")); cleaned != "" {
		lines[0] = cleaned
	} else {
		lines = lines[1:]
	}
	if len(lines) > 0 {
		lines[0] = strings.TrimLeft(lines[0], "):- ")
	}

	return draw.Optional(draw.Collapse(strings.Join(lines, " ")))
}
