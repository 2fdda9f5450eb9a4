// Package cipher is the only place plaintext is turned into the bytes that
// reach disk and back. The store sees a Cipher and nothing else, so the
// backing tool or algorithm can change without touching path or file
// handling.
package cipher

import (
	"context"
	"fmt"

	pmerrors "github.com/systmms/passmng/internal/errors"
	"github.com/systmms/passmng/internal/logging"
	pkgexec "github.com/systmms/passmng/pkg/exec"
)

// Cipher encrypts secrets for a recipient and decrypts them again. The
// recipient is never recorded by the store; working out who can decrypt is
// left to the implementation.
type Cipher interface {
	// Name identifies the backend in logs.
	Name() string

	Encrypt(ctx context.Context, plaintext []byte, recipient string) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// Backend names accepted by New.
const (
	BackendGPG     = "gpg"
	BackendKeyring = "keyring"
)

// Config selects and configures a backend.
type Config struct {
	Backend        string
	GPGBinary      string
	GPGHome        string
	KeyringAccount string
	Logger         *logging.Logger
	Executor       pkgexec.CommandExecutor
}

// New builds the Cipher named by cfg.Backend. An empty backend means gpg.
func New(cfg Config) (Cipher, error) {
	switch cfg.Backend {
	case "", BackendGPG:
		executor := cfg.Executor
		if executor == nil {
			executor = pkgexec.DefaultExecutor()
		}
		return NewGPGWithExecutor(GPGConfig{Binary: cfg.GPGBinary, HomeDir: cfg.GPGHome}, executor, cfg.Logger), nil
	case BackendKeyring:
		return NewKeyring(KeyringConfig{Account: cfg.KeyringAccount}, cfg.Logger), nil
	default:
		return nil, pmerrors.ConfigError{
			Field:      "backend",
			Value:      cfg.Backend,
			Message:    fmt.Sprintf("unknown cipher backend %q", cfg.Backend),
			Suggestion: "Use 'gpg' or 'keyring'",
		}
	}
}
