// Package logger provides structured file-based logging for the remap TUI.
// A terminal UI owns stdout, so logs go to a per-session file in the XDG
// state directory.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidLogLevel is returned when an unrecognised log level is provided.
var ErrInvalidLogLevel = errors.New("invalid log level")

const (
	appName = "remap"

	dirPermissions  = 0o755
	filePermissions = 0o644
)

// Logger wraps slog with file-based output.
type Logger struct {
	log     *slog.Logger
	logFile *os.File
}

// New creates a new Logger. An empty level returns a no-op logger.
// Valid levels: debug, info, warn, error (case-insensitive).
func New(level string) (*Logger, error) {
	if level == "" {
		return Nop(), nil
	}

	slogLevel, err := parseLogLevel(level)
	if err != nil {
		return nil, err
	}

	logDir, err := createLogDir()
	if err != nil {
		return nil, err
	}

	logFile, err := openLogFile(logDir)
	if err != nil {
		return nil, err
	}

	handler := slog.NewTextHandler(logFile, &slog.HandlerOptions{
		Level: slogLevel,
	})

	l := &Logger{
		log:     slog.New(handler),
		logFile: logFile,
	}

	l.Info("remap started", "pid", os.Getpid(), "level", level, "log_path", logFile.Name())

	return l, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// With returns a logger that adds the given key-value pairs to every record.
// The returned logger shares the parent's file; only the parent closes it.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{log: l.log.With(args...)}
}

// Path returns the log file path, or "" for a no-op logger.
func (l *Logger) Path() string {
	if l.logFile == nil {
		return ""
	}
	return l.logFile.Name()
}

// Close closes the log file if open.
func (l *Logger) Close() {
	if l.logFile != nil {
		l.logFile.Close()
	}
}

// Debug logs a debug message with optional key-value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	l.log.Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.log.Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	l.log.Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func (l *Logger) Error(msg string, args ...any) {
	l.log.Error(msg, args...)
}

// StateDir returns the remap state directory ($XDG_STATE_HOME/remap).
func StateDir() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine home directory: %w", err)
		}

		stateDir = filepath.Join(home, ".local", "state")
	}

	return filepath.Join(stateDir, appName), nil
}

func createLogDir() (string, error) {
	logDir, err := StateDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(logDir, dirPermissions); err != nil {
		return "", fmt.Errorf("could not create log directory: %w", err)
	}

	return logDir, nil
}

func openLogFile(logDir string) (*os.File, error) {
	logPath := filepath.Join(logDir, fmt.Sprintf("%s-%d.log", appName, os.Getpid()))

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermissions)
	if err != nil {
		return nil, fmt.Errorf("could not open log file: %w", err)
	}

	return logFile, nil
}

// CheckLevel reports whether New accepts level. Empty is valid.
func CheckLevel(level string) error {
	if level == "" {
		return nil
	}
	_, err := parseLogLevel(level)
	return err
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return -1, fmt.Errorf("%w: %s (use debug, info, warn, error)", ErrInvalidLogLevel, level)
	}
}
