package draw

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_MarshalJSON(t *testing.T) {
	rec := NewRecord()
	rec.MissionTask = Optional("Convoy")
	rec.Approval.Disapprove = true
	rec.Subtasks = append(rec.Subtasks, Subtask{Subtask: SubtaskName{Name: Optional("Move")}})

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "Convoy", decoded["mission_task_and_description"])
	assert.Nil(t, decoded["date"])
	assert.Nil(t, decoded["overall_residual_risk_level"])
	assert.Equal(t, map[string]any{"approve": float64(0), "disapprove": float64(1)},
		decoded["approval_or_disapproval_of_mission_or_task"])
	assert.NotContains(t, decoded, "source_pdf")

	prepared, ok := decoded["prepared_by"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, prepared, 9)
	assert.Contains(t, prepared, "training_support_or_lesson_plan_or_opord")

	rows, ok := decoded["subtasks"].([]any)
	require.True(t, ok)
	row := rows[0].(map[string]any)
	assert.Equal(t, map[string]any{"values": []any{}}, row["control"])
	assert.Equal(t, map[string]any{
		"how": map[string]any{"values": []any{}},
		"who": map[string]any{"values": []any{}},
	}, row["how_to_implement"])
}

func TestRecord_EmptySubtasksNotNull(t *testing.T) {
	data, err := json.Marshal(NewRecord())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"subtasks":[]`)
}

func TestRecord_Provenance(t *testing.T) {
	rec := NewRecord()
	rec.Provenance = &Provenance{SourcePDF: "/data/a.pdf", SourceDirectoryID: 3, SourceDirectoryName: "unit-a", SourceBaseDirectory: "base"}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "/data/a.pdf", decoded["source_pdf"])
	assert.Equal(t, float64(3), decoded["source_directory_id"])
	assert.Equal(t, "unit-a", decoded["source_directory_name"])
	assert.Equal(t, "base", decoded["source_base_directory"])

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	require.NotNil(t, back.Provenance)
	assert.Equal(t, 3, back.SourceDirectoryID)
}

func TestApproval_UnmarshalJSON(t *testing.T) {
	var a Approval
	require.NoError(t, json.Unmarshal([]byte(`{"approve":1,"disapprove":0}`), &a))
	assert.True(t, a.Approve)
	assert.False(t, a.Disapprove)

	require.NoError(t, json.Unmarshal([]byte(`{"approve":false,"disapprove":true}`), &a))
	assert.False(t, a.Approve)
	assert.True(t, a.Disapprove)
}

func TestInheritNames(t *testing.T) {
	rows := []Subtask{
		{Subtask: SubtaskName{Name: Optional("Range Setup")}},
		{},
		{},
		{Subtask: SubtaskName{Name: Optional("Recovery")}},
		{},
	}
	InheritNames(rows)

	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = Deref(r.Subtask.Name)
	}
	assert.Equal(t, []string{"Range Setup", "Range Setup", "Range Setup", "Recovery", "Recovery"}, names)

	leading := []Subtask{{}, {Subtask: SubtaskName{Name: Optional("Later")}}}
	InheritNames(leading)
	assert.Nil(t, leading[0].Subtask.Name)
}

func TestResolveOverallRisk(t *testing.T) {
	rec := NewRecord()
	rec.Subtasks = []Subtask{{ResidualRisk: Optional("L")}, {ResidualRisk: Optional("H")}, {ResidualRisk: Optional("M")}}

	rec.ResolveOverallRisk(nil)
	assert.Equal(t, "H", Deref(rec.OverallResidualRisk))

	rec.ResolveOverallRisk(Optional("LOW"))
	assert.Equal(t, "L", Deref(rec.OverallResidualRisk))
}

func TestOptionalCollapse(t *testing.T) {
	assert.Nil(t, Optional(" \n\t "))
	assert.Equal(t, "a b", Deref(Optional("  a b ")))
	assert.Equal(t, "a b c", Collapse(" a \n b\t\tc "))
}
