// Package logger writes sitefind's human-oriented status lines to stderr.
// Debug output is gated behind verbose mode (--verbose).
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose logging is enabled
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects all log lines. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	output = w
}

// Debug prints debug messages only when verbose mode is enabled
func Debug(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[DEBUG] "+format+"\n", args...)
	}
}

// Info prints informational messages
func Info(format string, args ...interface{}) {
	write("", format, args...)
}

// Success prints success messages with checkmark
func Success(format string, args ...interface{}) {
	write("✓ ", format, args...)
}

// Error prints error messages
func Error(format string, args ...interface{}) {
	write("✗ ", format, args...)
}

// Warn prints warning messages
func Warn(format string, args ...interface{}) {
	write("⚠ ", format, args...)
}

func write(prefix, format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(output, prefix+format+"\n", args...)
}
