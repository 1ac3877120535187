// Package logging configures the global zerolog logger for the binaries.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup points the global logger at stderr with the given level. In stdio
// mode stdout carries the MCP protocol, so logs are discarded unless the
// level is debug.
func Setup(level string, stdio bool) {
	log.Logger = New(os.Stderr, level, stdio)
	zerolog.SetGlobalLevel(ParseLevel(level))
}

// New builds a console logger writing to w
func New(w io.Writer, level string, stdio bool) zerolog.Logger {
	lvl := ParseLevel(level)
	if stdio && lvl != zerolog.DebugLevel {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a configured level name to zerolog, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
