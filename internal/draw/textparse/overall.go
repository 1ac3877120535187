package textparse

import (
	"regexp"
	"strings"

	"github.com/a3tai/draw-parser/internal/draw"
)

var (
	overallOption  = regexp.MustCompile(`(?i)(EXTREMELY\s+HIGH|HIGH|MEDIUM|LOW)`)
	overallMark    = regexp.MustCompile(`(?:^|[\s\[(])[X✓☑1](?:[\s\])]|$)`)
	overallWord    = regexp.MustCompile(`(?i)\b(?:SELECTED|CHECKED|YES)\b`)
	overallGlyphs  = regexp.MustCompile(`^[•*\-\x{25A0}\x{25A1}\[\]()]+`)
	narrativeLevel = regexp.MustCompile(`(?i)overall\s+residual\s+risk[^.]*?(?:assessed\s+as|assessed\s+to\s+be|is)\s+(extremely\s+high|very\s+high|high|medium|moderate|low|very\s+low|negligible)`)
)

var overallOptions = map[string]struct{}{
	"EXTREMELY HIGH": {},
	"HIGH":           {},
	"MEDIUM":         {},
	"LOW":            {},
}

var narrativeCodes = map[string]string{
	"EXTREMELY HIGH": draw.RiskExtremelyHigh,
	"VERY HIGH":      draw.RiskHigh,
	"HIGH":           draw.RiskHigh,
	"MEDIUM":         draw.RiskMedium,
	"MODERATE":       draw.RiskMedium,
	"LOW":            draw.RiskLow,
	"VERY LOW":       draw.RiskLow,
	"NEGLIGIBLE":     draw.RiskLow,
}

func optionWord(s string) string {
	return strings.ToUpper(draw.Collapse(s))
}

// markedOverall returns the option selected in block 10, or nil when the
// block is missing or no single option can be told apart.
func markedOverall(text string) *string {
	lines := nonBlankLines(section(overallSection, text))
	if len(lines) == 0 {
		return nil
	}

	if len(lines) == 1 {
		if opt := optionWord(lines[0]); isOption(opt) {
			return &opt
		}
		return nil
	}

	for _, line := range lines {
		loc := overallOption.FindStringIndex(line)
		if loc == nil {
			continue
		}
		rest := strings.TrimSpace(line[:loc[0]] + line[loc[1]:])
		if overallMark.MatchString(rest) || overallWord.MatchString(rest) {
			opt := optionWord(line[loc[0]:loc[1]])
			return &opt
		}
	}

	var only string
	count := 0
	for _, line := range lines {
		if opt := optionWord(overallGlyphs.ReplaceAllString(line, "")); isOption(opt) {
			only = opt
			count++
		}
	}
	if count == 1 {
		return &only
	}
	return nil
}

func isOption(s string) bool {
	_, ok := overallOptions[s]
	return ok
}

// narrativeOverall reads a level stated in the supervision plan prose, such
// as "the overall residual risk is assessed as low".
func narrativeOverall(plan string) *string {
	m := narrativeLevel.FindStringSubmatch(plan)
	if m == nil {
		return nil
	}
	code, ok := narrativeCodes[optionWord(m[1])]
	if !ok {
		return nil
	}
	return &code
}
