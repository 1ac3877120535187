package textparse

import (
	"regexp"
	"strings"

	"github.com/a3tai/draw-parser/internal/draw"
)

// split is the subtask/hazard division of a row's first column
type split struct {
	name   string
	hazard string
}

// splitRule is one step of the subtask/hazard disambiguation cascade. apply
// returns ok=false when the rule does not recognize the lines.
type splitRule struct {
	name  string
	apply func(v *draw.Vocabulary, lines []string) (split, bool)
}

// splitRules run in order until one applies
var splitRules = []splitRule{
	{name: "top-category", apply: topCategoryRule},
	{name: "hazard-keyword", apply: hazardKeywordRule},
	{name: "leading-lines", apply: leadingLinesRule},
	{name: "category-prefix", apply: categoryPrefixRule},
	{name: "separator", apply: separatorRule},
	{name: "whole", apply: wholeRule},
}

func joined(lines []string) string {
	return strings.Join(lines, " ")
}

// topCategoryRule treats a first line naming a top level activity as the
// subtask and everything after it as the hazard.
func topCategoryRule(v *draw.Vocabulary, lines []string) (split, bool) {
	if len(lines) < 2 {
		return split{}, false
	}
	first := strings.ToUpper(lines[0])
	for _, cat := range v.TopCategories {
		if strings.Contains(first, strings.ToUpper(cat)) {
			return split{name: lines[0], hazard: joined(lines[1:])}, true
		}
	}
	return split{}, false
}

// hazardKeywordRule splits before the first line holding a hazard word. A
// first-line match on an ambiguous word is ignored.
func hazardKeywordRule(v *draw.Vocabulary, lines []string) (split, bool) {
	if len(lines) < 2 {
		return split{}, false
	}
	for idx, line := range lines {
		matched := ""
		for _, tok := range strings.Fields(strings.ToUpper(line)) {
			if v.IsHazardWord(tok) {
				matched = tok
				break
			}
		}
		if matched == "" {
			continue
		}
		if idx == 0 && v.IsAmbiguousFirstLine(matched) {
			continue
		}
		return split{name: joined(lines[:idx]), hazard: joined(lines[idx:])}, true
	}
	return split{}, false
}

// leadingLinesRule keeps the first line as the subtask, or the first two when
// the second is short and the rest carries no hazard cue.
func leadingLinesRule(v *draw.Vocabulary, lines []string) (split, bool) {
	if len(lines) < 2 {
		return split{}, false
	}
	keep := 1
	secondWords := len(strings.Fields(lines[1]))
	if secondWords > 0 && secondWords <= v.Thresholds.ShortSecondLineWords && len(lines) > 2 {
		if !containsCue(v, strings.ToUpper(joined(lines[1:]))) {
			keep = 2
		}
	}
	return split{name: joined(lines[:keep]), hazard: joined(lines[keep:])}, true
}

func containsCue(v *draw.Vocabulary, upper string) bool {
	for _, cue := range v.HazardCues {
		if strings.Contains(upper, strings.ToUpper(cue)) {
			return true
		}
	}
	return false
}

// categoryPrefixRule splits a combined "CATEGORY specific hazard" string
func categoryPrefixRule(v *draw.Vocabulary, lines []string) (split, bool) {
	text := joined(lines)
	upper := strings.ToUpper(text)
	for _, cat := range v.CategoryPrefixes {
		cat = strings.ToUpper(cat)
		if !strings.HasPrefix(upper, cat) || len(cat) > len(text) {
			continue
		}
		name := strings.TrimSpace(text[:len(cat)])
		rest := strings.TrimSpace(text[len(cat):])
		rest = strings.TrimSpace(strings.TrimLeft(rest, "-–—:;/,"))
		if name == "" {
			name = text
		}
		return split{name: name, hazard: rest}, true
	}
	return split{}, false
}

var separator = regexp.MustCompile(`\s{2,}|\s[-–—/:]\s|:\s|/`)

// separatorRule splits at the first double space, spaced dash, colon or slash
func separatorRule(_ *draw.Vocabulary, lines []string) (split, bool) {
	text := joined(lines)
	loc := separator.FindStringIndex(text)
	if loc == nil {
		return split{}, false
	}
	return split{
		name:   strings.TrimSpace(text[:loc[0]]),
		hazard: strings.TrimSpace(text[loc[1]:]),
	}, true
}

// wholeRule keeps everything as the subtask name
func wholeRule(_ *draw.Vocabulary, lines []string) (split, bool) {
	return split{name: joined(lines)}, true
}

// splitSubtask runs the cascade over the subtask column lines
func splitSubtask(v *draw.Vocabulary, lines []string) (split, string) {
	if len(lines) == 0 {
		return split{}, ""
	}
	for _, rule := range splitRules {
		if s, ok := rule.apply(v, lines); ok {
			return s, rule.name
		}
	}
	return split{}, ""
}

var nameTokenSep = regexp.MustCompile(`[\s,/]+`)

// repairHazardName fixes rows whose name column actually starts a hazard
// description. The name is folded into the hazard and the previous row's
// name is reused. It returns false when the row is left alone.
func repairHazardName(v *draw.Vocabulary, s split, prevName string) (split, bool) {
	if s.name == "" || s.hazard == "" || prevName == "" {
		return s, false
	}

	var leading string
	for _, tok := range nameTokenSep.Split(strings.ToUpper(s.name), -1) {
		if tok != "" {
			leading = tok
			break
		}
	}
	if !v.IsHazardWord(leading) || v.IsStopword(leading) {
		return s, false
	}

	candidate := strings.TrimSpace(s.name)
	body := strings.TrimSpace(s.hazard)
	hazardWords := strings.Fields(strings.NewReplacer(",", " ", "/", " ").Replace(body))
	nameWords := strings.Fields(candidate)

	prepend := body == "" || len(hazardWords) <= v.Thresholds.ShortHazardWords
	if !prepend && len(nameWords) > 0 {
		prepend = v.IsTrailingConnective(strings.ToUpper(nameWords[len(nameWords)-1]))
	}

	combined := body
	if prepend {
		combined = candidate + " " + body
	}
	combined = draw.Collapse(combined)
	if combined == "" {
		return s, false
	}
	return split{name: prevName, hazard: combined}, true
}
