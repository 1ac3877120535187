package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/draw-parser/internal/draw"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"DRAW Range 12 (Final)", "draw-range-12-final"},
		{"--already--slugged--", "already-slugged"},
		{"Ünïcode_Name", "n-code-name"},
		{"___", "draw"},
		{"", "draw"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

func TestDateFromName(t *testing.T) {
	assert.Equal(t, "20240318", DateFromName("DRAW 20240318 range"))
	assert.Equal(t, "20240318", DateFromName("12345678 DRAW 20240318"), "20xx dates win over other digit runs")
	assert.Equal(t, "12345678", DateFromName("DRAW-12345678"))
	assert.Empty(t, DateFromName("DRAW_20240318"), "underscore is a word character")
	assert.Empty(t, DateFromName("DRAW 2024031"))
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2024-03-18", "20240318"},
		{"2024-3-8", "20240308"},
		{"03/18/2024", "20240318"},
		{"18/03/2024", "20240318"},
		{"18MAR2024", "20240318"},
		{"18Mar24", "20240318"},
		{"18 Mar 2024", "20240318"},
		{"18 March 2024", "20240318"},
		{"  20240318  ", "20240318"},
		{"Prepared 2024.03.18 at HQ", "20240318"},
		{"sometime next week", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDate(tt.input))
		})
	}
}

func TestIdentifier(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Range Day DRAW.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o644))
	mtime := time.Date(2023, 11, 5, 12, 0, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	tests := []struct {
		name  string
		path  string
		date  *string
		want  string
		setup func(t *testing.T) string
	}{
		{name: "date field", path: path, date: draw.Optional("18 Mar 2024"), want: "20240318-range-day-draw"},
		{name: "mtime fallback", path: path, date: draw.Optional("unknown"), want: "20231105-range-day-draw"},
		{name: "nil date field", path: path, want: "20231105-range-day-draw"},
		{name: "file name date wins", path: filepath.Join(dir, "DRAW 20240101.pdf"), date: draw.Optional("2024-03-18"), want: "20240101-draw-20240101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Identifier(tt.path, tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := Identifier(tt.path, tt.date)
			require.NoError(t, err)
			assert.Equal(t, got, again, "identifier must be stable")
		})
	}

	_, err := Identifier(filepath.Join(dir, "missing.pdf"), nil)
	assert.Error(t, err)
}

func TestPathAndBatchName(t *testing.T) {
	got, err := Path("PARSED_DRAWS", "/in/DRAW 20240318.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("PARSED_DRAWS", "20240318-draw-20240318.json"), got)

	assert.Equal(t, "0007-convoy-brief-draw.json", BatchName(7, "/in/dir/Convoy Brief.PDF"))
	assert.Equal(t, "0123-draw-draw.json", BatchName(123, "/in/dir/!!!.pdf"))
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	rec := draw.NewRecord()
	rec.MissionTask = draw.Optional("Fire & <maneuver>")

	require.NoError(t, WriteJSON(path, rec))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mission_task_and_description": "Fire & <maneuver>"`)
	assert.Contains(t, string(data), "\n  \"date\": null")
	assert.Contains(t, string(data), `"subtasks": []`)
}
