package testutil

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/systmms/passmng/internal/logging"
)

// TestLogger is a logging.Logger whose output is captured in memory.
//
// Commands and the store take a *logging.Logger, so the embedded logger is
// passed to them directly and the captured output checked afterwards:
//
//	logger := NewTestLogger(t)
//	cfg.Logger = logger.Logger
//	...
//	logger.AssertContains(t, "Added email/work")
//	logger.AssertNotContains(t, "hunter2")
type TestLogger struct {
	*logging.Logger
	buffer *lockedBuffer
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *lockedBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// NewTestLogger creates a TestLogger with debug output disabled.
func NewTestLogger(t *testing.T) *TestLogger {
	t.Helper()
	return NewTestLoggerWithDebug(t, false)
}

// NewTestLoggerWithDebug creates a TestLogger that also captures Debug lines
// when debug is true.
func NewTestLoggerWithDebug(t *testing.T, debug bool) *TestLogger {
	t.Helper()

	buf := &lockedBuffer{}
	return &TestLogger{
		Logger: logging.NewWithWriter(buf, debug, true),
		buffer: buf,
	}
}

// GetOutput returns everything logged since creation or the last Clear.
func (l *TestLogger) GetOutput() string {
	return l.buffer.String()
}

// Clear discards the captured output.
func (l *TestLogger) Clear() {
	l.buffer.Reset()
}

// AssertContains asserts that the log output contains substr.
func (l *TestLogger) AssertContains(t *testing.T, substr string) {
	t.Helper()
	assert.Contains(t, l.GetOutput(), substr, "Expected log output to contain %q", substr)
}

// AssertNotContains asserts that the log output does not contain substr.
// This is the check that secrets never reach the logs.
func (l *TestLogger) AssertNotContains(t *testing.T, substr string) {
	t.Helper()
	assert.NotContains(t, l.GetOutput(), substr, "Expected log output to NOT contain %q", substr)
}

// AssertRedacted asserts that secretValue is absent and the [REDACTED]
// marker present.
func (l *TestLogger) AssertRedacted(t *testing.T, secretValue string) {
	t.Helper()
	AssertSecretRedacted(t, l.GetOutput(), secretValue)
}

// AssertLogCount asserts how many lines of a level were logged.
//
// Level markers:
//   - info: "✓"
//   - warn: "⚠"
//   - error: "✗"
//   - debug: "[DEBUG]"
func (l *TestLogger) AssertLogCount(t *testing.T, level string, count int) {
	t.Helper()

	var marker string
	switch level {
	case "info":
		marker = "✓"
	case "warn":
		marker = "⚠"
	case "error":
		marker = "✗"
	case "debug":
		marker = "[DEBUG]"
	default:
		t.Fatalf("Unknown log level: %s", level)
	}

	actual := strings.Count(l.GetOutput(), marker)
	assert.Equal(t, count, actual, "Expected %d %s log messages, got %d", count, level, actual)
}

// AssertEmpty asserts that nothing was logged.
func (l *TestLogger) AssertEmpty(t *testing.T) {
	t.Helper()
	output := l.GetOutput()
	assert.Empty(t, output, "Expected no log output, but got:\n%s", output)
}

// Lines returns the non-empty captured lines.
func (l *TestLogger) Lines() []string {
	lines := strings.Split(l.GetOutput(), "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			result = append(result, line)
		}
	}
	return result
}
