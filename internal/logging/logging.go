// Package logging provides helpers for structured, colorized logging across the application.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents a structured log level used by backlog-notify.
type Level slog.Level

const (
	// LevelDebug represents the debug logging level.
	LevelDebug Level = Level(slog.LevelDebug)
	// LevelInfo represents the informational logging level.
	LevelInfo Level = Level(slog.LevelInfo)
	// LevelWarn represents the warning logging level.
	LevelWarn Level = Level(slog.LevelWarn)
	// LevelError represents the error logging level.
	LevelError Level = Level(slog.LevelError)
)

// String returns the lower-case level name.
func (l Level) String() string {
	return strings.ToLower(slog.Level(l).String())
}

// ParseLevel converts a textual log level into a Level value.
func ParseLevel(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// NewLogger constructs a slog.Logger configured with a tint handler and level.
func NewLogger(w io.Writer, level Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:   slog.Level(level),
		NoColor: w != os.Stderr && w != os.Stdout,
	})

	return slog.New(handler)
}

// OpenFile returns a size-rotated writer for path. The caller closes it.
func OpenFile(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
}

// Setup builds the process logger. When file is non-empty, records are written
// to both stderr and a rotated log file; the returned closer releases the file.
func Setup(level Level, file string) (*slog.Logger, io.Closer) {
	file = strings.TrimSpace(file)
	if file == "" {
		return NewLogger(os.Stderr, level), nopCloser{}
	}
	rotated := OpenFile(file)
	handler := tint.NewHandler(io.MultiWriter(os.Stderr, rotated), &tint.Options{
		Level:   slog.Level(level),
		NoColor: true,
	})
	return slog.New(handler), rotated
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
