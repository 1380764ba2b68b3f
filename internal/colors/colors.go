// Package colors provides color output utilities for the CLI commands.
package colors

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Color constants
const (
	Red    = "\033[0;31m"
	Green  = "\033[0;32m"
	Yellow = "\033[1;33m"
	Blue   = "\033[0;34m"
	Cyan   = "\033[0;36m"
	Reset  = "\033[0m"
)

const checkmark = "✓"

// Logger defines the interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

var (
	debugEnabled = false
	quiet        = false
	logger       Logger
	loggerMu     sync.RWMutex

	// Stdout and Stderr are swapped in tests.
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr

	writeMu    sync.Mutex
	inFallback bool
)

func init() {
	if val := os.Getenv("SENDPANEL_DEBUG"); val == "true" || val == "1" {
		debugEnabled = true
	}
}

// SetDebug enables or disables debug output.
func SetDebug(enabled bool) {
	debugEnabled = enabled
}

// SetQuiet suppresses informational and success output.
func SetQuiet(enabled bool) {
	quiet = enabled
}

// SetLogger sets the structured logger to mirror console output.
func SetLogger(l Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

func currentLogger() Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// write prints a line and reports write failures once to stderr without
// recursing back into the colored helpers.
func write(w io.Writer, line string) {
	writeMu.Lock()
	defer writeMu.Unlock()
	if _, err := fmt.Fprintln(w, line); err != nil && !inFallback {
		inFallback = true
		fmt.Fprintf(os.Stderr, "failed to print message: %v\n", err)
		inFallback = false
	}
}

// Error outputs an error message to stderr.
func Error(msgs ...string) {
	msg := strings.Join(msgs, " ")
	if l := currentLogger(); l != nil {
		l.Error(msg)
	}
	write(Stderr, fmt.Sprintf("%sError:%s %s%s", Red, Reset, msg, Reset))
}

// Warning outputs a warning message to stderr.
func Warning(msgs ...string) {
	msg := strings.Join(msgs, " ")
	if l := currentLogger(); l != nil {
		l.Warn(msg)
	}
	write(Stderr, fmt.Sprintf("%sWarning:%s %s%s", Yellow, Reset, msg, Reset))
}

// Success outputs a success message to stdout.
func Success(msgs ...string) {
	msg := strings.Join(msgs, " ")
	if l := currentLogger(); l != nil {
		l.Info(msg, "type", "success")
	}
	if quiet {
		return
	}
	write(Stdout, fmt.Sprintf("%s%s%s %s%s", Green, checkmark, Reset, msg, Reset))
}

// Info outputs an informational message to stdout.
func Info(msgs ...string) {
	msg := strings.Join(msgs, " ")
	if l := currentLogger(); l != nil {
		l.Info(msg)
	}
	if quiet {
		return
	}
	write(Stdout, fmt.Sprintf("%s%s%s", Blue, msg, Reset))
}

// Debug outputs a debug message to stderr if debug is enabled.
func Debug(msgs ...string) {
	if !debugEnabled {
		return
	}
	msg := strings.Join(msgs, " ")
	if l := currentLogger(); l != nil {
		l.Debug(msg)
	}
	write(Stderr, fmt.Sprintf("%sDebug:%s %s%s", Cyan, Reset, msg, Reset))
}

// Notify prints a feed entry using the helper matching its severity name
// ("success", "error", "warning", anything else is info).
func Notify(severity, text string) {
	switch severity {
	case "success":
		Success(text)
	case "error":
		Error(text)
	case "warning":
		Warning(text)
	default:
		Info(text)
	}
}
