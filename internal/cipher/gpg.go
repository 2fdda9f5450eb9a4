package cipher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"

	pmerrors "github.com/systmms/passmng/internal/errors"
	"github.com/systmms/passmng/internal/logging"
	pkgexec "github.com/systmms/passmng/pkg/exec"
)

// DefaultGPGBinary is looked up on PATH when no binary is configured.
const DefaultGPGBinary = "gpg"

// GPGConfig represents the configuration for the gpg backend.
type GPGConfig struct {
	Binary  string // gpg executable, default "gpg"
	HomeDir string // passed as --homedir when set
}

// GPG encrypts by piping secrets through the gpg command line tool.
type GPG struct {
	config   GPGConfig
	executor pkgexec.CommandExecutor
	logger   *logging.Logger
}

// NewGPG creates a gpg backend using the real command executor.
func NewGPG(config GPGConfig) *GPG {
	return NewGPGWithExecutor(config, pkgexec.DefaultExecutor(), nil)
}

// NewGPGWithExecutor creates a gpg backend with a custom executor.
// This is primarily for testing, allowing command execution to be mocked.
func NewGPGWithExecutor(config GPGConfig, executor pkgexec.CommandExecutor, logger *logging.Logger) *GPG {
	if config.Binary == "" {
		config.Binary = DefaultGPGBinary
	}
	if logger == nil {
		logger = logging.New(false, true)
	}
	return &GPG{
		config:   config,
		executor: executor,
		logger:   logger,
	}
}

// Name returns the backend name.
func (g *GPG) Name() string {
	return BackendGPG
}

// Encrypt encrypts plaintext to recipient and returns the binary OpenPGP
// message.
func (g *GPG) Encrypt(ctx context.Context, plaintext []byte, recipient string) ([]byte, error) {
	if recipient == "" {
		return nil, pmerrors.Wrap(pmerrors.ErrMissingEnvironment, "gpg needs a recipient")
	}

	args := append(g.baseArgs(),
		"--trust-model", "always",
		"--encrypt",
		"--recipient", recipient,
		"--output", "-",
	)

	g.logger.Debug("Encrypting %d bytes for %s with %s", len(plaintext), logging.Secret(recipient), g.config.Binary)
	out, err := g.run(ctx, plaintext, args)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, pmerrors.CommandError{Command: g.config.Binary, Stderr: "encryption produced no output"}
	}
	return out, nil
}

// Decrypt decrypts an OpenPGP message with whatever secret key gpg-agent
// can unlock.
func (g *GPG) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	args := append(g.baseArgs(),
		"--decrypt",
		"--output", "-",
	)

	g.logger.Debug("Decrypting %d bytes with %s", len(ciphertext), g.config.Binary)
	return g.run(ctx, ciphertext, args)
}

func (g *GPG) baseArgs() []string {
	args := []string{"--batch", "--yes", "--quiet"}
	if g.config.HomeDir != "" {
		args = append(args, "--homedir", g.config.HomeDir)
	}
	return args
}

// exitCoder is satisfied by *exec.ExitError and by test doubles.
type exitCoder interface {
	ExitCode() int
}

// spawnFailed reports whether err means the process never started: the
// binary is missing, not executable, or not a valid executable format.
func spawnFailed(err error) bool {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return true
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return true
	}
	var pathErr *fs.PathError
	return errors.As(err, &pathErr) && pathErr.Op == "fork/exec"
}

func (g *GPG) run(ctx context.Context, input []byte, args []string) ([]byte, error) {
	stdout, stderr, err := g.executor.Execute(ctx, bytes.NewReader(input), g.config.Binary, args...)
	if err == nil {
		return stdout, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%w: %s interrupted: %w", pmerrors.ErrToolFailed, g.config.Binary, ctxErr)
	}

	if spawnFailed(err) {
		return nil, pmerrors.WrapCommandNotFound(g.config.Binary, err)
	}

	var ec exitCoder
	if errors.As(err, &ec) {
		return nil, pmerrors.CommandError{
			Command:  g.config.Binary,
			ExitCode: ec.ExitCode(),
			Stderr:   strings.TrimSpace(string(stderr)),
			Err:      err,
		}
	}

	return nil, fmt.Errorf("%w: %s: %v", pmerrors.ErrIO, g.config.Binary, err)
}
