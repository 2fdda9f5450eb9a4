// Package store maps logical keys onto encrypted files under a store root.
//
// A key such as "email/work" lives at <root>/email/work.gpg. Keys are
// sanitized before any path is built, writes are atomic (temp file, fsync,
// rename) and plaintext only ever crosses the cipher.Cipher boundary.
// Concurrent writers to the same key are last-writer-wins; nothing is
// locked.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/systmms/passmng/internal/cipher"
	pmerrors "github.com/systmms/passmng/internal/errors"
	"github.com/systmms/passmng/internal/logging"
)

// Store is the password store rooted at one directory.
type Store struct {
	root   string
	cipher cipher.Cipher
	files  *FileStore
	logger *logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a Store. Nothing is touched on disk until an operation runs.
func New(root string, c cipher.Cipher, opts ...Option) *Store {
	s := &Store{
		root:   root,
		cipher: c,
		files:  NewFileStore(root),
		logger: logging.New(false, true),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

// Init creates the store root. It reports whether the store already existed.
func (s *Store) Init(ctx context.Context) (existed bool, err error) {
	info, err := os.Stat(s.root)
	switch {
	case err == nil && info.IsDir():
		return true, nil
	case err == nil:
		return false, pmerrors.Op("init", "", pmerrors.Wrap(pmerrors.ErrDirectoryCreateFailed, "%s exists and is not a directory", s.root))
	case !errors.Is(err, fs.ErrNotExist):
		return false, pmerrors.Op("init", "", fmt.Errorf("%w: %v", pmerrors.ErrIO, err))
	}

	if err := os.MkdirAll(s.root, dirPerm); err != nil {
		return false, pmerrors.Op("init", "", fmt.Errorf("%w: %v", pmerrors.ErrDirectoryCreateFailed, err))
	}
	s.logger.Debug("Created password store at %s", s.root)
	return false, nil
}

func (s *Store) requireInitialized() error {
	info, err := os.Stat(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return pmerrors.Wrap(pmerrors.ErrStoreNotInitialized, "%s does not exist", s.root)
		}
		return fmt.Errorf("%w: %v", pmerrors.ErrIO, err)
	}
	if !info.IsDir() {
		return pmerrors.Wrap(pmerrors.ErrStoreNotInitialized, "%s is not a directory", s.root)
	}
	return nil
}

// Insert encrypts plaintext for recipient and stores it under key,
// replacing any previous secret.
func (s *Store) Insert(ctx context.Context, key string, plaintext []byte, recipient string) error {
	if recipient == "" {
		return pmerrors.Op("insert", key, pmerrors.Wrap(pmerrors.ErrMissingEnvironment, "no recipient configured"))
	}
	if err := ValidateKey(key); err != nil {
		return pmerrors.Op("insert", key, err)
	}
	if err := s.requireInitialized(); err != nil {
		return pmerrors.Op("insert", key, err)
	}

	// Encrypt first so a failed cipher leaves no new directories behind.
	ciphertext, err := s.cipher.Encrypt(ctx, plaintext, recipient)
	if err != nil {
		return pmerrors.Op("insert", key, err)
	}

	path, err := Resolve(s.root, key)
	if err != nil {
		return pmerrors.Op("insert", key, err)
	}

	if err := s.files.Write(path, ciphertext); err != nil {
		return pmerrors.Op("insert", key, err)
	}

	s.logger.Debug("Stored %s with %s backend", key, s.cipher.Name())
	return nil
}

// ShowBytes returns the decrypted secret without any text validation.
func (s *Store) ShowBytes(ctx context.Context, key string) ([]byte, error) {
	path, err := Path(s.root, key)
	if err != nil {
		return nil, pmerrors.Op("show", key, err)
	}
	if err := s.requireInitialized(); err != nil {
		return nil, pmerrors.Op("show", key, err)
	}

	ciphertext, err := s.files.Read(path)
	if err != nil {
		return nil, pmerrors.Op("show", key, err)
	}

	plaintext, err := s.cipher.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, pmerrors.Op("show", key, err)
	}
	return plaintext, nil
}

// Show returns the secret stored under key as text.
func (s *Store) Show(ctx context.Context, key string) (string, error) {
	plaintext, err := s.ShowBytes(ctx, key)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plaintext) {
		return "", pmerrors.Op("show", key, pmerrors.Wrap(pmerrors.ErrDecodedContentInvalid, "plaintext is not valid UTF-8"))
	}
	return string(plaintext), nil
}

// Remove deletes the secret stored under key.
func (s *Store) Remove(ctx context.Context, key string) error {
	path, err := Path(s.root, key)
	if err != nil {
		return pmerrors.Op("remove", key, err)
	}
	if err := s.requireInitialized(); err != nil {
		return pmerrors.Op("remove", key, err)
	}
	if err := s.files.Delete(path); err != nil {
		return pmerrors.Op("remove", key, err)
	}
	s.logger.Debug("Removed %s", key)
	return nil
}

// List returns every key in the store, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	keys, err := ListKeys(s.root)
	if err != nil {
		return nil, pmerrors.Op("list", "", err)
	}
	return keys, nil
}

// Exists reports whether a secret is stored under key.
func (s *Store) Exists(key string) bool {
	path, err := Path(s.root, key)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
