package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Logger writes human-oriented status lines to stderr. Secret material must
// be passed as Secret so it is redacted.
type Logger struct {
	debug   bool
	noColor bool
	out     io.Writer
	mu      sync.Mutex

	info  *color.Color
	warn  *color.Color
	err   *color.Color
	trace *color.Color
}

// New creates a new logger instance
func New(debug, noColor bool) *Logger {
	return NewWithWriter(os.Stderr, debug, noColor)
}

// NewWithWriter creates a logger that writes to w instead of stderr.
func NewWithWriter(w io.Writer, debug, noColor bool) *Logger {
	l := &Logger{
		debug:   debug,
		noColor: noColor,
		out:     w,
		info:    color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		err:     color.New(color.FgRed),
		trace:   color.New(color.FgCyan),
	}
	if noColor {
		for _, c := range []*color.Color{l.info, l.warn, l.err, l.trace} {
			c.DisableColor()
		}
	} else {
		for _, c := range []*color.Color{l.info, l.warn, l.err, l.trace} {
			c.EnableColor()
		}
	}
	return l
}

// Debugging reports whether debug output is enabled.
func (l *Logger) Debugging() bool {
	return l.debug
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(l.info, "✓", format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(l.warn, "⚠", format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(l.err, "✗", format, args...)
}

// Debug logs a debug message if debug mode is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.emit(l.trace, "[DEBUG]", format, args...)
}

func (l *Logger) emit(c *color.Color, marker, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s %s\n", c.Sprint(marker), msg)
}

// Secret represents a value that should be redacted in logs
type Secret string

// String implements the Stringer interface, always returning a redacted value
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements the GoStringer interface for %#v formatting
func (s Secret) GoString() string {
	return "[REDACTED]"
}
