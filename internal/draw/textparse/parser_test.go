package textparse

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/draw-parser/internal/draw"
)

// sampleTranscript mimics the text layer of an exported DD2977
const sampleTranscript = `DELIBERATE RISK ASSESSMENT WORKSHEET
1. MISSION/TASK DESCRIPTION
Platoon live fire
exercise at Range 12
2. DATE PREPARED (YYYYMMDD)
20240318
3. PREPARED BY
a. NAME (Last, First, Middle Initial)
DOE, JOHN Q
b. RANK/GRADE
CPT
c. DUTY TITLE/POSITION
Company Commander
d. UNIT
A Co, 1-2 CR
e. WORK EMAIL
john.doe@army.mil
f. TELEPHONE (DSN/Commercial (Include Area Code))
555-0100
g. UIC/CIN (as required)
WABCDE
h. TRAINING SUPPORT/LESSON PLAN OR OPORD (as required)
OPORD 24-01
i. SIGNATURE OF PREPARER
Five steps of Risk Management: (1) Identify the hazards (2) Assess the hazards
4. SUBTASK/SUBSTEP OF MISSION/TASK 5. HAZARD 6. INITIAL RISK LEVEL 7. CONTROL 8. HOW TO IMPLEMENT/WHO WILL IMPLEMENT 9. RESIDUAL RISK LEVEL
+
-
RANGE EXECUTION
Negligent Discharge
H
- Conduct safety brief before
each iteration.
- Clear weapons at the
ready line.
How: Safety brief
Who: RSO
L
+
-
Heat Injury
M
Hydrate every hour.
Monitor wet bulb.
And enforce rest cycles.
How: Water plan
Who: PSG
L
+
-
Establish firing line
Lightning strike
H
- Monitor weather
How: Weather
checks
Who: OIC
M
+
-
Fatigue
from extended hours
M
- Rotate crews
How: Work/rest cycle
Who: PSG
L
10. OVERALL RESIDUAL RISK LEVEL (All controls implemented):
EXTREMELY HIGH
HIGH
MEDIUM
LOW
11. OVERALL SUPERVISION PLAN AND RECOMMENDED COURSE OF ACTION: Leaders
supervise every iteration.
12. APPROVAL OR DISAPPROVAL OF MISSION OR TASK
APPROVE
DISAPPROVE
Digitally signed by SMITH.JANE
13. RISK ASSESSMENT REVIEW
`

func TestParse_EndToEnd(t *testing.T) {
	rec := Parse(sampleTranscript)
	require.NotNil(t, rec)

	assert.Equal(t, "Platoon live fire exercise at Range 12", draw.Deref(rec.MissionTask))
	assert.Equal(t, "20240318", draw.Deref(rec.Date))

	pb := rec.PreparedBy
	assert.Equal(t, "DOE, JOHN Q", draw.Deref(pb.Name))
	assert.Equal(t, "CPT", draw.Deref(pb.RankGrade))
	assert.Equal(t, "Company Commander", draw.Deref(pb.DutyTitle))
	assert.Equal(t, "A Co, 1-2 CR", draw.Deref(pb.Unit))
	assert.Equal(t, "john.doe@army.mil", draw.Deref(pb.WorkEmail))
	assert.Equal(t, "555-0100", draw.Deref(pb.Telephone))
	assert.Equal(t, "WABCDE", draw.Deref(pb.UICCIN))
	assert.Equal(t, "OPORD 24-01", draw.Deref(pb.Reference))
	assert.Nil(t, pb.Signature, "instructional text is not a signature")

	require.Len(t, rec.Subtasks, 4)

	expected := []struct {
		name, hazard, initial, residual string
		controls, how, who              []string
	}{
		{
			name: "RANGE EXECUTION", hazard: "Negligent Discharge", initial: "H", residual: "L",
			controls: []string{"Conduct safety brief before each iteration.", "Clear weapons at the ready line."},
			how:      []string{"Safety brief"}, who: []string{"RSO"},
		},
		{
			name: "RANGE EXECUTION", hazard: "Heat Injury", initial: "M", residual: "L",
			controls: []string{"Hydrate every hour.", "Monitor wet bulb. And enforce rest cycles."},
			how:      []string{"Water plan"}, who: []string{"PSG"},
		},
		{
			name: "Establish firing line", hazard: "Lightning strike", initial: "H", residual: "M",
			controls: []string{"Monitor weather"},
			how:      []string{"Weather checks"}, who: []string{"OIC"},
		},
		{
			name: "Establish firing line", hazard: "Fatigue from extended hours", initial: "M", residual: "L",
			controls: []string{"Rotate crews"},
			how:      []string{"Work/rest cycle"}, who: []string{"PSG"},
		},
	}

	for i, want := range expected {
		got := rec.Subtasks[i]
		assert.Equal(t, want.name, draw.Deref(got.Subtask.Name), "row %d name", i)
		assert.Equal(t, want.hazard, draw.Deref(got.Hazard), "row %d hazard", i)
		assert.Equal(t, want.initial, draw.Deref(got.InitialRisk), "row %d initial", i)
		assert.Equal(t, want.residual, draw.Deref(got.ResidualRisk), "row %d residual", i)
		assert.Equal(t, want.controls, got.Control.Values, "row %d controls", i)
		assert.Equal(t, want.how, got.HowToImplement.How.Values, "row %d how", i)
		assert.Equal(t, want.who, got.HowToImplement.Who.Values, "row %d who", i)
	}

	assert.Equal(t, "M", draw.Deref(rec.OverallResidualRisk), "unmarked options fall back to the aggregate")
	assert.Equal(t, "Leaders supervise every iteration.", draw.Deref(rec.OverallSupervisionPlan))
	assert.True(t, rec.Approval.Approve, "signature without disapproval wording approves")
	assert.False(t, rec.Approval.Disapprove)
}

func TestParse_Deterministic(t *testing.T) {
	first, err := json.Marshal(Parse(sampleTranscript))
	require.NoError(t, err)
	second, err := json.Marshal(Parse(sampleTranscript))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestParse_NameInheritance(t *testing.T) {
	text := `9. RESIDUAL RISK LEVEL
+
-
Convoy march
Vehicle rollover
H
L
+
-
Fatigue
of drivers
M
L
+
-
Fall from
vehicle deck
M
L
10. OVERALL RESIDUAL RISK LEVEL:
`
	rec := Parse(text)
	require.Len(t, rec.Subtasks, 3)
	for i, row := range rec.Subtasks {
		assert.Equal(t, "Convoy march", draw.Deref(row.Subtask.Name), "row %d", i)
	}
	assert.Equal(t, "Vehicle rollover", draw.Deref(rec.Subtasks[0].Hazard))
	assert.Equal(t, "Fatigue of drivers", draw.Deref(rec.Subtasks[1].Hazard))
	assert.Equal(t, "Fall from vehicle deck", draw.Deref(rec.Subtasks[2].Hazard))
}

func TestParse_RepairsHazardInNameColumn(t *testing.T) {
	text := `9. RESIDUAL RISK LEVEL
+
-
Range Setup
Slips on wet ground
L
L
+
-
WEATHER high winds
M
L
10. OVERALL RESIDUAL RISK LEVEL:
`
	rec := Parse(text)
	require.Len(t, rec.Subtasks, 2)
	assert.Equal(t, "Range Setup", draw.Deref(rec.Subtasks[1].Subtask.Name))
	assert.Equal(t, "WEATHER high winds", draw.Deref(rec.Subtasks[1].Hazard))
}

func TestParse_NarrativeOverridesOverall(t *testing.T) {
	text := `9. RESIDUAL RISK LEVEL
+
-
Movement
Vehicle accident
H
H
10. OVERALL RESIDUAL RISK LEVEL (All controls implemented):
HIGH
11. OVERALL SUPERVISION PLAN: The overall residual risk is assessed as low once all
controls are in place.
12. APPROVAL OR DISAPPROVAL OF MISSION OR TASK
`
	rec := Parse(text)
	assert.Equal(t, "L", draw.Deref(rec.OverallResidualRisk))
	assert.Equal(t, "The overall residual risk is assessed as low once all controls are in place.",
		draw.Deref(rec.OverallSupervisionPlan))
}

func TestParse_ExplicitOverall(t *testing.T) {
	text := `10. OVERALL RESIDUAL RISK LEVEL (All controls implemented):
EXTREMELY HIGH
HIGH
MEDIUM X
LOW
11. OVERALL SUPERVISION PLAN: none
`
	rec := Parse(text)
	assert.Equal(t, "M", draw.Deref(rec.OverallResidualRisk))
}

func TestParse_NoMatches(t *testing.T) {
	inputs := []string{
		"",
		"garbled \x00 text without any sections",
		strings.Repeat("+\n-\n", 50),
		"9. RESIDUAL RISK LEVEL\n+\n-\n   \n10. OVERALL",
	}

	for _, in := range inputs {
		rec := Parse(in)
		require.NotNil(t, rec)
		assert.Nil(t, rec.MissionTask)
		assert.Nil(t, rec.OverallResidualRisk)
		assert.Empty(t, rec.Subtasks)
		assert.NotNil(t, rec.Subtasks)
		assert.False(t, rec.Approval.Approve)
		assert.False(t, rec.Approval.Disapprove)
	}
}
