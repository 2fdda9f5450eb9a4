// Package exec provides abstractions for command execution.
// This package enables testable code by allowing CLI commands to be mocked.
package exec

import (
	"bytes"
	"context"
	"io"
	"os/exec"
)

// CommandExecutor defines an interface for executing external commands.
// This abstraction allows for mocking CLI tool behavior in tests.
type CommandExecutor interface {
	// Execute runs a command with the given context and arguments, feeding
	// stdin (which may be nil) to the process.
	// Returns stdout, stderr, and any error that occurred.
	Execute(ctx context.Context, stdin io.Reader, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// RealCommandExecutor executes actual commands using os/exec.
// This is the production implementation.
type RealCommandExecutor struct {
	// Env, when non-nil, replaces the child's environment.
	Env []string
}

// Execute runs an actual command. The whole of stdin is written before the
// call waits for the process to exit.
func (r *RealCommandExecutor) Execute(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if r.Env != nil {
		cmd.Env = r.Env
	}
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// DefaultExecutor returns the standard production executor.
// This is used as the default when no executor is injected.
func DefaultExecutor() CommandExecutor {
	return &RealCommandExecutor{}
}
