// Package draw holds the canonical DD2977 Deliberate Risk Assessment
// Worksheet record and the logic shared by both extraction paths.
package draw

import (
	"encoding/json"
	"strings"
)

// Record is the canonical representation of one DRAW form
type Record struct {
	MissionTask            *string    `json:"mission_task_and_description"`
	Date                   *string    `json:"date"`
	PreparedBy             PreparedBy `json:"prepared_by"`
	Subtasks               []Subtask  `json:"subtasks"`
	OverallResidualRisk    *string    `json:"overall_residual_risk_level"`
	OverallSupervisionPlan *string    `json:"overall_supervision_plan"`
	Approval               Approval   `json:"approval_or_disapproval_of_mission_or_task"`

	// Provenance is attached by batch drivers only
	*Provenance
}

// PreparedBy is block 3 of the form
type PreparedBy struct {
	Name      *string `json:"name_last_first_middle_initial"`
	RankGrade *string `json:"rank_grade"`
	DutyTitle *string `json:"duty_title_position"`
	Unit      *string `json:"unit"`
	WorkEmail *string `json:"work_email"`
	Telephone *string `json:"telephone"`
	UICCIN    *string `json:"uic_cin"`
	Reference *string `json:"training_support_or_lesson_plan_or_opord"`
	Signature *string `json:"signature_of_preparer"`
}

// Subtask is one row of the hazard table (blocks 4 through 9)
type Subtask struct {
	Subtask        SubtaskName    `json:"subtask"`
	Hazard         *string        `json:"hazard"`
	InitialRisk    *string        `json:"initial_risk_level"`
	Control        Values         `json:"control"`
	HowToImplement HowToImplement `json:"how_to_implement"`
	ResidualRisk   *string        `json:"residual_risk_level"`
}

// SubtaskName wraps the row name the way the output schema nests it
type SubtaskName struct {
	Name *string `json:"name"`
}

// HowToImplement is block 8 of a row
type HowToImplement struct {
	How Values `json:"how"`
	Who Values `json:"who"`
}

// Values is a list wrapped in {"values": [...]}; nil serializes as []
type Values struct {
	Values []string `json:"values"`
}

// MarshalJSON keeps empty lists as [] rather than null
func (v Values) MarshalJSON() ([]byte, error) {
	items := v.Values
	if items == nil {
		items = []string{}
	}
	return json.Marshal(struct {
		Values []string `json:"values"`
	}{items})
}

// Approval is block 12. The flags are independent and may both be set.
type Approval struct {
	Approve    bool `json:"approve"`
	Disapprove bool `json:"disapprove"`
}

// MarshalJSON writes the flags as 0/1
func (a Approval) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Approve    int `json:"approve"`
		Disapprove int `json:"disapprove"`
	}{boolToInt(a.Approve), boolToInt(a.Disapprove)})
}

// UnmarshalJSON accepts both 0/1 and true/false
func (a *Approval) UnmarshalJSON(data []byte) error {
	var raw struct {
		Approve    json.RawMessage `json:"approve"`
		Disapprove json.RawMessage `json:"disapprove"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Approve = truthy(raw.Approve)
	a.Disapprove = truthy(raw.Disapprove)
	return nil
}

// Provenance links a record back to the directory a batch found it in
type Provenance struct {
	SourcePDF           string `json:"source_pdf,omitempty"`
	SourceDirectoryID   int    `json:"source_directory_id,omitempty"`
	SourceDirectoryName string `json:"source_directory_name,omitempty"`
	SourceBaseDirectory string `json:"source_base_directory,omitempty"`
}

// NewRecord returns a record with every list initialized
func NewRecord() *Record {
	return &Record{Subtasks: []Subtask{}}
}

// ResolveOverallRisk sets the overall residual risk from an explicit marked
// value, or from the subtask aggregate when nothing was marked.
func (r *Record) ResolveOverallRisk(explicit *string) {
	if explicit != nil {
		r.OverallResidualRisk = NormalizeRisk(*explicit)
		return
	}
	residuals := make([]*string, 0, len(r.Subtasks))
	for _, s := range r.Subtasks {
		residuals = append(residuals, s.ResidualRisk)
	}
	r.OverallResidualRisk = AggregateRisk(residuals)
}

// InheritNames fills unnamed rows with the most recent non-empty name
func InheritNames(rows []Subtask) {
	var last *string
	for i := range rows {
		if rows[i].Subtask.Name != nil {
			last = rows[i].Subtask.Name
			continue
		}
		if last != nil {
			name := *last
			rows[i].Subtask.Name = &name
		}
	}
}

// Optional trims s and returns nil when nothing is left
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Collapse folds whitespace runs into single spaces and trims
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Deref returns the pointed-to string or ""
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func truthy(raw json.RawMessage) bool {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	return s == "1" || s == "true"
}
