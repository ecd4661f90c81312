// Package logging sets up the structured JSON logger shared by the hosts.
//
// Menus are displayed on stdout, so logs go to a file and fall back to
// stderr only when the file cannot be opened.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options configures New.
type Options struct {
	// Path is the log file. Parent directories are created. Empty logs to
	// Fallback.
	Path string

	// Level is a raw level name (debug, info, warn, error).
	Level string

	// Fallback receives logs when Path is empty or unusable (default stderr).
	Fallback io.Writer
}

// Logger is a JSON slog logger with an adjustable level and an optional
// backing file.
type Logger struct {
	*slog.Logger

	level    *slog.LevelVar
	file     *os.File
	fallback bool
}

// New opens the log destination and returns a ready logger.
func New(opts Options) *Logger {
	fallback := opts.Fallback
	if fallback == nil {
		fallback = os.Stderr
	}

	l := &Logger{level: &slog.LevelVar{}}
	l.level.Set(ParseLevel(opts.Level))

	w := fallback
	if opts.Path == "" {
		l.fallback = true
	} else if f, err := openLogFile(opts.Path); err != nil {
		l.fallback = true
	} else {
		l.file = f
		w = f
	}

	l.Logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     l.level,
		AddSource: false,
	}))
	if l.fallback && opts.Path != "" {
		l.Warn("log file unavailable, logging to fallback", "path", opts.Path)
	}
	return l
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	l := &Logger{level: &slog.LevelVar{}}
	l.Logger = slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: l.level}))
	return l
}

// ParseLevel converts a level name to a slog.Level. Unknown names map to
// info.
func ParseLevel(rawLevel string) slog.Level {
	switch strings.ToLower(rawLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// SetRawLevel changes the minimum level from a level name.
func (l *Logger) SetRawLevel(rawLevel string) {
	l.level.Set(ParseLevel(rawLevel))
}

// Level returns the current minimum level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// UsingFallback reports whether logs go to the fallback writer instead of
// the configured file.
func (l *Logger) UsingFallback() bool {
	return l.fallback
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
