// Package logger provides the logging interface used across powersched.
// The production backend is zerolog; tests use MockLogger or NopLogger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger defines the interface for logging across all powersched components.
type Logger interface {
	// Info logs an informational message (e.g., "task created").
	Info(format string, args ...interface{})

	// Warning logs a warning message (e.g., "skipping malformed record").
	Warning(format string, args ...interface{})

	// Error logs an error message (e.g., "persist tasks: disk full").
	Error(format string, args ...interface{})

	// Close releases resources held by the logger (e.g., an open log file).
	// Safe to call multiple times.
	Close() error
}

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Options configures a ZeroLogger.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// File, when set, receives JSON lines in addition to the console.
	File string
	// Console enables the human readable writer on Out.
	Console bool
	// Out is the console destination. Defaults to os.Stderr.
	Out io.Writer
}

// ZeroLogger writes through a zerolog.Logger.
type ZeroLogger struct {
	zl zerolog.Logger

	mu   sync.Mutex
	file *os.File
}

// New builds a ZeroLogger from opts. With neither Console nor File set it
// falls back to the console so messages are never silently dropped.
func New(opts Options) (*ZeroLogger, error) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.ErrorFieldName = "err"

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	var (
		writers []io.Writer
		file    *os.File
	)
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		writers = append(writers, f)
	}
	if opts.Console || len(writers) == 0 {
		writers = append(writers, zerolog.ConsoleWriter{Out: out, TimeFormat: consoleTimeFormat})
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(opts.Level)).
		With().Timestamp().Logger()
	return &ZeroLogger{zl: zl, file: file}, nil
}

// NewZeroLogger wraps an existing zerolog.Logger.
func NewZeroLogger(zl zerolog.Logger) *ZeroLogger {
	return &ZeroLogger{zl: zl}
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
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

// Info logs at info level.
func (z *ZeroLogger) Info(format string, args ...interface{}) {
	z.zl.Info().Msgf(format, args...)
}

// Warning logs at warn level.
func (z *ZeroLogger) Warning(format string, args ...interface{}) {
	z.zl.Warn().Msgf(format, args...)
}

// Error logs at error level.
func (z *ZeroLogger) Error(format string, args ...interface{}) {
	z.zl.Error().Msgf(format, args...)
}

// Close closes the log file if one was opened.
func (z *ZeroLogger) Close() error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.file == nil {
		return nil
	}
	err := z.file.Close()
	z.file = nil
	return err
}

// NopLogger is a logger that discards all messages.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all messages.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (n *NopLogger) Info(format string, args ...interface{})    {}
func (n *NopLogger) Warning(format string, args ...interface{}) {}
func (n *NopLogger) Error(format string, args ...interface{})   {}
func (n *NopLogger) Close() error                               { return nil }

// Ensure implementations satisfy the Logger interface.
var (
	_ Logger = (*ZeroLogger)(nil)
	_ Logger = (*NopLogger)(nil)
)

// MockLogger implements Logger for testing purposes.
// It records all log calls for verification in tests and is safe for
// concurrent use, since the scheduler logs from its own goroutine.
type MockLogger struct {
	mu           sync.Mutex
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
	CloseCalled  bool
}

// NewMockLogger creates a new MockLogger for testing.
func NewMockLogger() *MockLogger {
	return &MockLogger{
		InfoCalls:    make([]string, 0),
		WarningCalls: make([]string, 0),
		ErrorCalls:   make([]string, 0),
	}
}

// Info records the formatted message.
func (m *MockLogger) Info(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InfoCalls = append(m.InfoCalls, fmt.Sprintf(format, args...))
}

// Warning records the formatted message.
func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WarningCalls = append(m.WarningCalls, fmt.Sprintf(format, args...))
}

// Error records the formatted message.
func (m *MockLogger) Error(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorCalls = append(m.ErrorCalls, fmt.Sprintf(format, args...))
}

// Close records that Close was called.
func (m *MockLogger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return nil
}

// Errors returns a copy of the recorded error messages.
func (m *MockLogger) Errors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ErrorCalls...)
}

// Warnings returns a copy of the recorded warning messages.
func (m *MockLogger) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.WarningCalls...)
}

// Infos returns a copy of the recorded info messages.
func (m *MockLogger) Infos() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.InfoCalls...)
}

var _ Logger = (*MockLogger)(nil)
