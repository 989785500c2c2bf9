package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogMode selects handler and level.
type LogMode uint8

const (
	ModeDev LogMode = iota
	ModeProd
	ModeSilence
)

// ParseMode maps "dev", "prod" and "silence" (case-insensitive) to a LogMode.
// Anything else is ModeDev.
func ParseMode(s string) LogMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prod", "modeprod":
		return ModeProd
	case "silence", "silent", "modesilence":
		return ModeSilence
	default:
		return ModeDev
	}
}

// New returns a logger writing to stderr.
func New(mode LogMode) *slog.Logger {
	return NewTo(os.Stderr, mode)
}

// NewTo returns a logger writing to w.
//   - ModeDev: text, debug level, source positions
//   - ModeProd: JSON, info level
//   - ModeSilence: discards everything
func NewTo(w io.Writer, mode LogMode) *slog.Logger {
	return slog.New(buildHandler(w, mode))
}

// Discard is a logger that drops every record.
func Discard() *slog.Logger {
	return NewTo(io.Discard, ModeSilence)
}

func buildHandler(w io.Writer, mode LogMode) slog.Handler {
	switch mode {
	case ModeProd:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	case ModeSilence:
		return slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true})
	}
}
