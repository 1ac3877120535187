package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", false)
	logger.Info().Msg("hidden")
	logger.Warn().Str("path", "a.pdf").Msg("Skipping DRAW")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "Skipping DRAW")
	assert.Contains(t, out, "path=a.pdf")
}

func TestNew_StdioQuietUnlessDebug(t *testing.T) {
	var buf bytes.Buffer
	quiet := New(&buf, "info", true)
	quiet.Error().Msg("dropped")
	assert.Empty(t, buf.String())

	verbose := New(&buf, "debug", true)
	verbose.Debug().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}
