// Package textparse rebuilds a DRAW record from a plain text transcript when
// the PDF carries no usable embedded dataset.
package textparse

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/a3tai/draw-parser/internal/draw"
)

// Parser parses DD2977 transcripts using a fixed vocabulary
type Parser struct {
	vocab       *draw.Vocabulary
	disapproval []*regexp.Regexp
}

// NewParser creates a parser. A nil vocabulary selects the embedded default.
func NewParser(vocab *draw.Vocabulary) *Parser {
	if vocab == nil {
		vocab = draw.DefaultVocabulary()
	}
	p := &Parser{vocab: vocab}
	for _, phrase := range vocab.DisapprovalPhrases {
		if strings.TrimSpace(phrase) != "" {
			p.disapproval = append(p.disapproval, phrasePattern(phrase))
		}
	}
	return p
}

// Parse builds a record from normalized text. It never fails; anything it
// cannot locate stays null or empty.
func (p *Parser) Parse(text string) *draw.Record {
	rec := draw.NewRecord()

	rec.MissionTask = singleValue(missionSection, text)
	rec.Date = singleValue(dateSection, text)
	rec.PreparedBy = p.preparedBy(text)
	rec.Subtasks = p.subtasks(text)
	rec.OverallSupervisionPlan = singleValue(supervisionSection, text)

	explicit := markedOverall(text)
	if narrative := narrativeOverall(draw.Deref(rec.OverallSupervisionPlan)); narrative != nil {
		explicit = narrative
	}
	rec.ResolveOverallRisk(explicit)

	rec.Approval = p.approval(text)

	log.Debug().
		Int("subtasks", len(rec.Subtasks)).
		Bool("mission", rec.MissionTask != nil).
		Bool("explicit_overall", explicit != nil).
		Msg("parsed DRAW transcript")
	return rec
}

// subtasks parses blocks 4 through 9
func (p *Parser) subtasks(text string) []draw.Subtask {
	rows := []draw.Subtask{}
	lastName := ""

	for _, content := range tableRows(text) {
		scan, ok := scanRow(content)
		if !ok {
			continue
		}
		prevName := lastName

		s, rule := splitSubtask(p.vocab, scan.subtask)
		if repaired, ok := repairHazardName(p.vocab, s, prevName); ok {
			s = repaired
			rule += "+repair"
		}

		// a lone name cell under an existing subtask is really a hazard
		if prevName != "" && s.name != "" && s.hazard == "" {
			s = split{name: prevName, hazard: strings.TrimSpace(s.name)}
		}

		if name := strings.TrimSpace(s.name); name != "" {
			lastName = name
		} else {
			s.name = lastName
		}

		row := draw.Subtask{
			Subtask:      draw.SubtaskName{Name: draw.Optional(s.name)},
			Hazard:       draw.Optional(s.hazard),
			InitialRisk:  draw.NormalizeRisk(scan.initial),
			ResidualRisk: draw.NormalizeRisk(scan.residual),
		}
		row.Control.Values = groupControls(p.vocab, scan.controls)
		row.HowToImplement.How.Values = joinedValue(scan.how)
		row.HowToImplement.Who.Values = joinedValue(scan.who)

		log.Debug().Str("rule", rule).Str("name", s.name).Str("hazard", s.hazard).Msg("split table row")
		rows = append(rows, row)
	}

	return rows
}

func joinedValue(lines []string) []string {
	if v := draw.Collapse(strings.Join(lines, " ")); v != "" {
		return []string{v}
	}
	return nil
}

var defaultParser = NewParser(nil)

// Parse runs the default parser over text
func Parse(text string) *draw.Record {
	return defaultParser.Parse(text)
}
