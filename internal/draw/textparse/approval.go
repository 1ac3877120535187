package textparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/a3tai/draw-parser/internal/draw"
)

var (
	approveBox     = regexp.MustCompile(`(?i)\bAPPROVE:[ \t]*([0-9X✓☑]+|checked\b|yes\b|true\b)`)
	disapproveBox  = regexp.MustCompile(`(?i)\bDISAPPROVE:[ \t]*([0-9X✓☑]+|checked\b|yes\b|true\b)`)
	signatureMark  = regexp.MustCompile(`(?i)Digitally\s+signed\s+by`)
	approvalLabels = regexp.MustCompile(`(?i)^\s*(?:12\.\s*APPROVAL\s+OR\s+DISAPPROVAL.*|APPROVE|DISAPPROVE)\s*$`)
)

// checkbox reports whether the token printed after a box label marks it
func checkbox(re *regexp.Regexp, text string) bool {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	switch v := strings.ToLower(strings.TrimSpace(m[1])); v {
	case "1", "x", "✓", "☑", "checked", "yes", "true":
		return true
	default:
		n, err := strconv.Atoi(v)
		return err == nil && n > 0
	}
}

func phrasePattern(phrase string) *regexp.Regexp {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b` + strings.Join(words, `\s+`) + `\b`)
}

// approval reads block 12. Explicit boxes win; when both are blank the
// signature block decides, and a contradictory block leaves both unset.
func (p *Parser) approval(text string) draw.Approval {
	a := draw.Approval{
		Approve:    checkbox(approveBox, text),
		Disapprove: checkbox(disapproveBox, text),
	}
	if a.Approve || a.Disapprove {
		return a
	}

	m := approvalSection.FindStringSubmatch(text)
	if m == nil {
		return a
	}
	block := m[1]
	signed := signatureMark.MatchString(block)

	var kept []string
	for _, line := range strings.Split(block, "\n") {
		if !approvalLabels.MatchString(line) {
			kept = append(kept, line)
		}
	}
	body := strings.Join(kept, "\n")

	rejected := false
	for _, re := range p.disapproval {
		if re.MatchString(body) {
			rejected = true
			break
		}
	}

	switch {
	case signed && !rejected:
		a.Approve = true
	case rejected && !signed:
		a.Disapprove = true
	}
	return a
}
