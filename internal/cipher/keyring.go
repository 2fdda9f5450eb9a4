package cipher

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/nacl/secretbox"

	pmerrors "github.com/systmms/passmng/internal/errors"
	"github.com/systmms/passmng/internal/logging"
)

// KeyringService is the OS keyring service the store key is filed under.
const KeyringService = "passmng"

// DefaultKeyringAccount names the store key when none is configured.
const DefaultKeyringAccount = "default"

const (
	keySize   = 32
	nonceSize = 24
)

// KeyringConfig represents the configuration for the keyring backend.
type KeyringConfig struct {
	Service string
	Account string
}

// Keyring encrypts in process with NaCl secretbox. One random 32-byte store
// key is kept in the OS keyring (macOS Keychain, Secret Service, Windows
// Credential Manager) and created on first encrypt.
//
// Ciphertext layout: 24-byte nonce followed by the sealed box.
type Keyring struct {
	config KeyringConfig
	logger *logging.Logger
}

// NewKeyring creates a keyring backend.
func NewKeyring(config KeyringConfig, logger *logging.Logger) *Keyring {
	if config.Service == "" {
		config.Service = KeyringService
	}
	if config.Account == "" {
		config.Account = DefaultKeyringAccount
	}
	if logger == nil {
		logger = logging.New(false, true)
	}
	return &Keyring{config: config, logger: logger}
}

// Name returns the backend name.
func (k *Keyring) Name() string {
	return BackendKeyring
}

// Encrypt seals plaintext under the store key. The recipient must be set but
// does not select a key: everyone who can read the keyring entry can decrypt.
func (k *Keyring) Encrypt(ctx context.Context, plaintext []byte, recipient string) ([]byte, error) {
	if recipient == "" {
		return nil, pmerrors.Wrap(pmerrors.ErrMissingEnvironment, "keyring backend needs a recipient")
	}

	key, err := k.storeKey(true)
	if err != nil {
		return nil, err
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("%w: generate nonce: %v", pmerrors.ErrIO, err)
	}

	return secretbox.Seal(nonce[:], plaintext, &nonce, key), nil
}

// Decrypt opens a box produced by Encrypt.
func (k *Keyring) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < nonceSize+secretbox.Overhead {
		return nil, pmerrors.Wrap(pmerrors.ErrIO, "ciphertext too short (%d bytes)", len(ciphertext))
	}

	key, err := k.storeKey(false)
	if err != nil {
		return nil, err
	}

	var nonce [nonceSize]byte
	copy(nonce[:], ciphertext[:nonceSize])

	plaintext, ok := secretbox.Open(nil, ciphertext[nonceSize:], &nonce, key)
	if !ok {
		return nil, pmerrors.Wrap(pmerrors.ErrIO, "ciphertext failed authentication")
	}
	return plaintext, nil
}

func (k *Keyring) storeKey(create bool) (*[keySize]byte, error) {
	encoded, err := keyring.Get(k.config.Service, k.config.Account)
	switch {
	case err == nil:
		return decodeKey(encoded)
	case errors.Is(err, keyring.ErrNotFound) && create:
		return k.createKey()
	case errors.Is(err, keyring.ErrNotFound):
		return nil, pmerrors.Wrap(pmerrors.ErrToolFailed, "store key %s/%s not found in keyring", k.config.Service, k.config.Account)
	default:
		return nil, fmt.Errorf("%w: keyring: %v", pmerrors.ErrToolFailed, err)
	}
}

func (k *Keyring) createKey() (*[keySize]byte, error) {
	var key [keySize]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return nil, fmt.Errorf("%w: generate store key: %v", pmerrors.ErrIO, err)
	}
	if err := keyring.Set(k.config.Service, k.config.Account, base64.StdEncoding.EncodeToString(key[:])); err != nil {
		return nil, fmt.Errorf("%w: keyring: %v", pmerrors.ErrToolFailed, err)
	}
	k.logger.Info("Created a new store key in the OS keyring (%s/%s)", k.config.Service, k.config.Account)
	return &key, nil
}

func decodeKey(encoded string) (*[keySize]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) != keySize {
		return nil, pmerrors.Wrap(pmerrors.ErrToolFailed, "store key in keyring is malformed")
	}
	var key [keySize]byte
	copy(key[:], raw)
	return &key, nil
}
