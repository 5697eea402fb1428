// Package logger provides a simple logging interface for sensorboard components.
// It allows packages to log debug, info, warn, and error messages without
// being coupled to a specific logging implementation.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Output formats accepted by Options.Format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DebugEnv enables debug output when set to any non-empty value.
const DebugEnv = "SENSORBOARD_DEBUG"

// Options configures a slog-backed logger.
type Options struct {
	// Format is "text" (tint, human readable) or "json".
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
	// Debug lowers the level to slog.LevelDebug.
	Debug bool
	// NoColor disables ANSI colors in text output.
	NoColor bool
}

// slogLogger implements Logger on top of a slog.Logger.
type slogLogger struct {
	component string
	log       *slog.Logger
}

// New creates a logger for the given component.
// The component is attached to every record as the "component" attribute.
func New(component string, opts Options) Logger {
	return &slogLogger{
		component: component,
		log:       slog.New(NewHandler(opts)),
	}
}

// NewHandler builds the slog handler described by opts.
func NewHandler(opts Options) slog.Handler {
	w := opts.Output
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	if opts.Format == FormatJSON {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}

	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    opts.NoColor,
	})
}

// NewEnvLogger creates a stderr logger that respects the SENSORBOARD_DEBUG
// environment variable.
func NewEnvLogger(component string) Logger {
	return New(component, Options{
		Format: FormatText,
		Output: os.Stderr,
		Debug:  os.Getenv(DebugEnv) != "",
	})
}

func (l *slogLogger) emit(level slog.Level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.component != "" {
		l.log.Log(context.Background(), level, msg, "component", l.component)
		return
	}
	l.log.Log(context.Background(), level, msg)
}

func (l *slogLogger) Debug(format string, args ...interface{}) {
	l.emit(slog.LevelDebug, format, args...)
}

func (l *slogLogger) Info(format string, args ...interface{}) {
	l.emit(slog.LevelInfo, format, args...)
}

func (l *slogLogger) Warn(format string, args ...interface{}) {
	l.emit(slog.LevelWarn, format, args...)
}

func (l *slogLogger) Error(format string, args ...interface{}) {
	l.emit(slog.LevelError, format, args...)
}

// noopLogger implements Logger but discards all messages.
// Useful for testing or when logging is not desired.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing.
// Safe for use from multiple goroutines.
type BufferLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) {
	l.add("debug", format, args...)
}

func (l *BufferLogger) Info(format string, args ...interface{}) {
	l.add("info", format, args...)
}

func (l *BufferLogger) Warn(format string, args ...interface{}) {
	l.add("warn", format, args...)
}

func (l *BufferLogger) Error(format string, args ...interface{}) {
	l.add("error", format, args...)
}

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Count returns the number of messages logged at the given level.
func (l *BufferLogger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, m := range l.Messages {
		if m.Level == level {
			n++
		}
	}
	return n
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = l.Messages[:0]
}

// defaultLogger is the package-level default logger.
var defaultLogger = NewEnvLogger("")

// Default returns the default logger for the package.
func Default() Logger {
	return defaultLogger
}

// SetDefault sets the default logger for the package.
func SetDefault(l Logger) {
	defaultLogger = l
}
