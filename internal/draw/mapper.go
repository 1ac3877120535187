package draw

import (
	"regexp"
	"strings"

	"github.com/a3tai/draw-parser/internal/pdf/xfa"
)

// XFA field identifiers of the DD2977 form template
const (
	formKey       = "form1"
	pageKey       = "Page1"
	tableKey      = "Part4thru9"
	rowPrefix     = "row"
	howWhoKey     = "Table2"
	overallKey    = "Ten"
	supervisorKey = "Eleven"
	approvalKey   = "Twelve"
)

// row name spellings in priority order
var subtaskKeys = []string{"Subtask-Substep", "Subtask_Substep", "Subtask"}

// residual risk spellings used by different template revisions
var residualKeys = []string{"RRL", "ResidualRiskLevel", "ResidualRiskLvl", "ResidualRiskLevel1", "ResidualRiskLevel_1"}

// overall risk checkboxes, most severe first
var overallBoxes = []struct {
	key  string
	code string
}{
	{"EHigh", RiskExtremelyHigh},
	{"High", RiskHigh},
	{"Med", RiskMedium},
	{"Low", RiskLow},
}

var markedTokens = map[string]struct{}{
	"1": {}, "x": {}, "true": {}, "yes": {}, "on": {}, "checked": {},
}

var controlBullet = regexp.MustCompile(`^[•*\-]+\s*`)

// FromDataset maps a decoded xfa:data tree onto a Record. The second return
// is false when the tree is not shaped like a DD2977 dataset.
func FromDataset(root *xfa.Element) (*Record, bool) {
	form := root.Child(formKey)
	if form == nil {
		return nil, false
	}
	pageValue, ok := form.Get(pageKey)
	if !ok {
		// a form without Page1 still maps, every field stays null
		pageValue = xfa.NewElement()
	}
	page, ok := pageValue.(*xfa.Element)
	if !ok {
		if s, isText := pageValue.(string); !isText || s != "" {
			return nil, false
		}
		page = xfa.NewElement()
	}

	rec := NewRecord()
	rec.MissionTask = field(page, "One")
	rec.Date = field(page, "Two")
	rec.PreparedBy = PreparedBy{
		Name:      field(page, "A"),
		RankGrade: field(page, "B"),
		DutyTitle: field(page, "C"),
		Unit:      field(page, "D"),
		WorkEmail: field(page, "E"),
		Telephone: field(page, "F"),
		UICCIN:    field(page, "G"),
		Reference: field(page, "H"),
		Signature: field(page, "I"),
	}

	rec.Subtasks = mapRows(page.Child(tableKey))

	var explicit *string
	if box := page.Child(overallKey); box != nil {
		for _, b := range overallBoxes {
			if isMarked(box, b.key) {
				code := b.code
				explicit = &code
				break
			}
		}
	}
	rec.ResolveOverallRisk(explicit)

	rec.OverallSupervisionPlan = field(page, supervisorKey)

	if approval := page.Child(approvalKey); approval != nil {
		rec.Approval.Approve = isMarked(approval, "Approve")
		rec.Approval.Disapprove = isMarked(approval, "Disapprove")
	}

	return rec, true
}

func mapRows(table *xfa.Element) []Subtask {
	var entries []*xfa.Element
	for _, key := range table.Keys() {
		if !strings.HasPrefix(strings.ToLower(key), rowPrefix) {
			continue
		}
		v, _ := table.Get(key)
		entries = append(entries, branches(v)...)
	}

	rows := make([]Subtask, 0, len(entries))
	for _, entry := range entries {
		var row Subtask
		for _, key := range subtaskKeys {
			if name := field(entry, key); name != nil {
				row.Subtask.Name = name
				break
			}
		}
		if hazard := field(entry, "Hazard"); hazard != nil {
			row.Hazard = Optional(Collapse(*hazard))
		}
		row.InitialRisk = NormalizeRisk(Deref(field(entry, "InitialRiskLevel")))
		for _, key := range residualKeys {
			if v := field(entry, key); v != nil {
				row.ResidualRisk = NormalizeRisk(*v)
				break
			}
		}
		row.Control.Values = splitLines(Deref(field(entry, "Control")))

		howWho := firstBranch(entry, howWhoKey)
		row.HowToImplement.How.Values = singleton(field(howWho, "Row1"))
		row.HowToImplement.Who.Values = singleton(field(howWho, "Row2"))

		rows = append(rows, row)
	}

	InheritNames(rows)
	return rows
}

// branches flattens a row group value into its mapping entries
func branches(v any) []*xfa.Element {
	switch t := v.(type) {
	case *xfa.Element:
		return []*xfa.Element{t}
	case []any:
		var out []*xfa.Element
		for _, item := range t {
			if e, ok := item.(*xfa.Element); ok {
				out = append(out, e)
			}
		}
		return out
	default:
		return nil
	}
}

// firstBranch returns e[tag], or its first element when the tag repeats
func firstBranch(e *xfa.Element, tag string) *xfa.Element {
	v, _ := e.Get(tag)
	switch t := v.(type) {
	case *xfa.Element:
		return t
	case []any:
		if len(t) > 0 {
			first, _ := t[0].(*xfa.Element)
			return first
		}
	}
	return nil
}

// field returns the first non-empty text found under tag
func field(e *xfa.Element, tag string) *string {
	v, ok := e.Get(tag)
	if !ok {
		return nil
	}
	return coerce(v)
}

func coerce(v any) *string {
	switch t := v.(type) {
	case string:
		return Optional(t)
	case *xfa.Element:
		for _, k := range t.Keys() {
			child, _ := t.Get(k)
			if s := coerce(child); s != nil {
				return s
			}
		}
	case []any:
		for _, item := range t {
			if s := coerce(item); s != nil {
				return s
			}
		}
	}
	return nil
}

func isMarked(e *xfa.Element, tag string) bool {
	v := field(e, tag)
	if v == nil {
		return false
	}
	_, ok := markedTokens[strings.ToLower(*v)]
	return ok
}

// splitLines breaks a multi-line cell into items without bullet glyphs
func splitLines(text string) []string {
	var items []string
	for _, line := range strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' }) {
		line = controlBullet.ReplaceAllString(strings.TrimSpace(line), "")
		if line = Collapse(line); line != "" {
			items = append(items, line)
		}
	}
	return items
}

func singleton(s *string) []string {
	if s == nil {
		return nil
	}
	if v := Collapse(*s); v != "" {
		return []string{v}
	}
	return nil
}
