// Package testutil provides testing utilities for passmng.
package testutil

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// MockCommandExecutor provides a configurable mock for testing CLI-backed
// ciphers. It satisfies pkg/exec.CommandExecutor.
type MockCommandExecutor struct {
	mu sync.Mutex

	// Responses maps command patterns to their mock responses.
	// Key format: "command arg1 arg2" (space-separated command and args)
	Responses map[string]MockResponse

	// Handler, when set, computes the response from the recorded call and
	// takes precedence over Responses.
	Handler func(call RecordedCall) MockResponse

	// DefaultResponse is used when no matching pattern is found.
	DefaultResponse *MockResponse

	// RecordedCalls stores all calls made to Execute for verification.
	RecordedCalls []RecordedCall

	// StrictMode causes Execute to fail if no matching response is found.
	StrictMode bool
}

// MockResponse defines the expected output for a mocked command.
type MockResponse struct {
	Stdout   []byte
	Stderr   []byte
	Err      error
	ExitCode int // Turned into an ExitError when Err is nil
}

// RecordedCall stores information about a command execution.
type RecordedCall struct {
	Command string
	Args    []string
	Stdin   []byte
	Context context.Context
}

// ExitError mimics *exec.ExitError for mocked non-zero exits.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode returns the simulated exit status.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// NewMockCommandExecutor creates a new mock executor with empty responses.
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		Responses:     make(map[string]MockResponse),
		RecordedCalls: make([]RecordedCall, 0),
	}
}

// Execute returns the mocked response for the given command.
func (m *MockCommandExecutor) Execute(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, []byte, error) {
	var input []byte
	if stdin != nil {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, nil, err
		}
		input = b
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	call := RecordedCall{
		Command: name,
		Args:    args,
		Stdin:   input,
		Context: ctx,
	}
	m.RecordedCalls = append(m.RecordedCalls, call)

	if m.Handler != nil {
		return m.Handler(call).result()
	}

	key := m.buildKey(name, args)

	// Try exact match first
	if resp, ok := m.Responses[key]; ok {
		return resp.result()
	}

	// Then prefix matching for flexibility
	for pattern, resp := range m.Responses {
		if strings.HasPrefix(key, pattern) {
			return resp.result()
		}
	}

	if m.DefaultResponse != nil {
		return m.DefaultResponse.result()
	}

	if m.StrictMode {
		return nil, nil, fmt.Errorf("mock: no response configured for command: %s", key)
	}

	return []byte{}, []byte{}, nil
}

func (r MockResponse) result() ([]byte, []byte, error) {
	if r.Err == nil && r.ExitCode != 0 {
		return r.Stdout, r.Stderr, &ExitError{Code: r.ExitCode}
	}
	return r.Stdout, r.Stderr, r.Err
}

// buildKey creates a lookup key from command and arguments.
func (m *MockCommandExecutor) buildKey(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// AddResponse registers a mock response for a specific command pattern.
func (m *MockCommandExecutor) AddResponse(commandPattern string, response MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[commandPattern] = response
}

// AddErrorResponse adds a non-zero exit response for a command pattern.
func (m *MockCommandExecutor) AddErrorResponse(commandPattern string, stderr string, exitCode int) {
	m.AddResponse(commandPattern, MockResponse{
		Stdout:   []byte{},
		Stderr:   []byte(stderr),
		ExitCode: exitCode,
	})
}

// GetCalls returns all recorded calls matching the given command name.
func (m *MockCommandExecutor) GetCalls(commandName string) []RecordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matches []RecordedCall
	for _, call := range m.RecordedCalls {
		if call.Command == commandName {
			matches = append(matches, call)
		}
	}
	return matches
}

// CallCount returns the number of times Execute was called.
func (m *MockCommandExecutor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RecordedCalls)
}

// AssertCalled verifies that a specific command was called at least once.
func (m *MockCommandExecutor) AssertCalled(t interface{ Error(args ...interface{}) }, commandName string) bool {
	calls := m.GetCalls(commandName)
	if len(calls) == 0 {
		t.Error("expected command", commandName, "to be called, but it was not")
		return false
	}
	return true
}

// AssertNotCalled verifies that a specific command was never called.
func (m *MockCommandExecutor) AssertNotCalled(t interface{ Error(args ...interface{}) }, commandName string) bool {
	calls := m.GetCalls(commandName)
	if len(calls) > 0 {
		t.Error("expected command", commandName, "to not be called, but it was called", len(calls), "times")
		return false
	}
	return true
}

// FakeGPG returns a mock that behaves like a reversible gpg: --encrypt
// writes a marker line naming the recipient followed by the input XORed
// with 0xAA, --decrypt reverses it. It lets store and command tests run end
// to end without a real gpg keyring.
func FakeGPG() *MockCommandExecutor {
	m := NewMockCommandExecutor()
	m.Handler = func(call RecordedCall) MockResponse {
		switch {
		case hasArg(call.Args, "--encrypt"):
			recipient := argAfter(call.Args, "--recipient")
			out := append([]byte(FakeGPGMagic+recipient+"\n"), scramble(call.Stdin)...)
			return MockResponse{Stdout: out}
		case hasArg(call.Args, "--decrypt"):
			s := string(call.Stdin)
			if !strings.HasPrefix(s, FakeGPGMagic) {
				return MockResponse{Stderr: []byte("gpg: no valid OpenPGP data found."), ExitCode: 2}
			}
			_, body, _ := strings.Cut(s, "\n")
			return MockResponse{Stdout: scramble([]byte(body))}
		}
		return MockResponse{Stderr: []byte("gpg: unsupported invocation"), ExitCode: 2}
	}
	return m
}

// FakeGPGMagic prefixes every ciphertext produced by FakeGPG.
const FakeGPGMagic = "FAKEPGP:"

func hasArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func scramble(in []byte) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ 0xAA
	}
	return out
}
