package textparse

import (
	"regexp"
	"strings"
)

// rowBoundary is the "+" / "-" line pair the form renderer prints between
// table rows.
var rowBoundary = regexp.MustCompile(`(?:^|\n)\+\s*\n-\s*\n`)

// riskToken is a bare risk code cell: up to three of M/H/L/E, or one digit
var riskToken = regexp.MustCompile(`^(?:[MHLE]{1,3}|[0-9])$`)

// lineState is the table column a row line is currently attributed to
type lineState int

const (
	stateSubtask lineState = iota
	stateControls
	stateHow
	stateWho
)

func (s lineState) String() string {
	switch s {
	case stateSubtask:
		return "subtask"
	case stateControls:
		return "controls"
	case stateHow:
		return "how"
	case stateWho:
		return "who"
	default:
		return "unknown"
	}
}

// rowScan accumulates the lines of one table row by column
type rowScan struct {
	state    lineState
	subtask  []string
	controls []string
	how      []string
	who      []string
	initial  string
	residual string
	seenRisk bool
}

// feed applies one line and reports whether the row is complete. Rules are
// checked in a fixed order: risk code, How:/Who: prefix, dash bullet, then
// append to the current column.
func (r *rowScan) feed(line string) bool {
	switch {
	case riskToken.MatchString(line):
		if r.seenRisk {
			r.residual = line
			return true
		}
		r.initial = line
		r.seenRisk = true
		r.state = stateControls
	case strings.HasPrefix(line, "How:"):
		r.state = stateHow
		r.appendRemainder(&r.how, line[len("How:"):])
	case strings.HasPrefix(line, "Who:"):
		r.state = stateWho
		r.appendRemainder(&r.who, line[len("Who:"):])
	case strings.HasPrefix(line, "-") && (r.state == stateControls || r.state == stateSubtask):
		r.state = stateControls
		r.controls = append(r.controls, line)
	default:
		r.appendCurrent(line)
	}
	return false
}

func (r *rowScan) appendRemainder(dst *[]string, rest string) {
	if rest = strings.TrimSpace(rest); rest != "" {
		*dst = append(*dst, rest)
	}
}

func (r *rowScan) appendCurrent(line string) {
	switch r.state {
	case stateSubtask:
		r.subtask = append(r.subtask, line)
	case stateControls:
		r.controls = append(r.controls, line)
	case stateHow:
		r.how = append(r.how, line)
	case stateWho:
		r.who = append(r.who, line)
	}
}

// scanRow classifies the non-blank lines of one row
func scanRow(content string) (*rowScan, bool) {
	lines := nonBlankLines(content)
	if len(lines) == 0 {
		return nil, false
	}
	r := &rowScan{state: stateSubtask}
	for _, line := range lines {
		if r.feed(line) {
			break
		}
	}
	return r, true
}

// tableRows returns the raw text of each row between the residual risk
// column header and block 10.
func tableRows(text string) []string {
	body := tableSection.FindStringSubmatch(text)
	if body == nil {
		return nil
	}
	parts := rowBoundary.Split(body[1], -1)
	if len(parts) < 2 {
		return nil
	}
	// text before the first boundary is column headers
	return parts[1:]
}

func nonBlankLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
