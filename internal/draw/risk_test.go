package draw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRisk(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Extremely High", "EH"},
		{"extremely  high", "EH"},
		{"Very High", "H"},
		{"High", "H"},
		{"Medium", "M"},
		{"Med", "M"},
		{"Moderate", "M"},
		{"Low", "L"},
		{"Negligible", "L"},
		{"0", "L"},
		{"1", "M"},
		{"2", "H"},
		{"3", "EH"},
		{"EH", "EH"},
		{"H", "H"},
		{"M", "M"},
		{"L", "L"},
		{" eh ", "EH"},
		{"purple", "purple"},
		{"  5  ", "5"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeRisk(tt.input)
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, *got)
		})
	}

	assert.Nil(t, NormalizeRisk(""))
	assert.Nil(t, NormalizeRisk("   "))
}

func TestAggregateRisk(t *testing.T) {
	tests := []struct {
		name     string
		input    []*string
		expected *string
	}{
		{name: "max severity wins", input: ptrs("L", "H", "M"), expected: Optional("H")},
		{name: "extremely high beats high", input: ptrs("H", "EH", "L"), expected: Optional("EH")},
		{name: "canonical beats unknown", input: ptrs("purple", "M"), expected: Optional("M")},
		{name: "lowercase codes", input: ptrs("l", "m"), expected: Optional("M")},
		{name: "numeric fallback", input: ptrs("4", "7", "5"), expected: Optional("7")},
		{name: "fractional numbers truncate", input: ptrs("2.5", "1"), expected: Optional("2")},
		{name: "infinity is not a number", input: ptrs("Inf", "2"), expected: nil},
		{name: "nan is not a number", input: ptrs("NaN"), expected: nil},
		{name: "exponent is not a number", input: ptrs("1e9", "3"), expected: nil},
		{name: "signed is not a number", input: ptrs("-4", "+5"), expected: nil},
		{name: "mixed unknown and numeric", input: ptrs("purple", "4"), expected: nil},
		{name: "nils ignored", input: []*string{nil, Optional("L"), nil}, expected: Optional("L")},
		{name: "empty", input: nil, expected: nil},
		{name: "only blanks", input: ptrs(" ", ""), expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AggregateRisk(tt.input))
		})
	}
}

func TestSeverity(t *testing.T) {
	assert.Greater(t, Severity("EH"), Severity("H"))
	assert.Greater(t, Severity("H"), Severity("M"))
	assert.Greater(t, Severity("M"), Severity("L"))
	assert.Equal(t, 0, Severity("purple"))
}

func ptrs(values ...string) []*string {
	out := make([]*string, len(values))
	for i := range values {
		v := values[i]
		out[i] = &v
	}
	return out
}
