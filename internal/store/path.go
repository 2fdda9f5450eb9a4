package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pmerrors "github.com/systmms/passmng/internal/errors"
)

// Extension marks an encrypted secret file.
const Extension = ".gpg"

const dirPerm = 0o700

// ValidateKey checks a logical key without touching the filesystem.
func ValidateKey(key string) error {
	if key == "" {
		return pmerrors.Wrap(pmerrors.ErrInvalidKey, "key is empty")
	}
	for i, seg := range strings.Split(key, "/") {
		switch {
		case seg == "":
			return pmerrors.Wrap(pmerrors.ErrInvalidKey, "segment %d is empty", i+1)
		case seg == "." || seg == "..":
			return pmerrors.Wrap(pmerrors.ErrInvalidKey, "segment %d is %q", i+1, seg)
		case strings.ContainsRune(seg, 0):
			return pmerrors.Wrap(pmerrors.ErrInvalidKey, "segment %d contains a NUL byte", i+1)
		case strings.ContainsRune(seg, filepath.Separator):
			return pmerrors.Wrap(pmerrors.ErrInvalidKey, "segment %d contains a path separator", i+1)
		}
	}
	return nil
}

// Path maps key to its file under root. It never creates anything, so it is
// what read-side operations use.
func Path(root, key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}

	segs := strings.Split(key, "/")
	segs[len(segs)-1] += Extension
	p := filepath.Join(append([]string{root}, segs...)...)

	// Validation already rules out traversal; this guards against a root
	// that Join would clean into something unexpected.
	rel, err := filepath.Rel(filepath.Clean(root), p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", pmerrors.Wrap(pmerrors.ErrInvalidKey, "key escapes the store root")
	}
	return p, nil
}

// Resolve is Path plus creation of the parent directory chain. A rejected key
// creates nothing.
func Resolve(root, key string) (string, error) {
	p, err := Path(root, key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), dirPerm); err != nil {
		return "", fmt.Errorf("%w: %v", pmerrors.ErrDirectoryCreateFailed, err)
	}
	return p, nil
}

// keyFromRel turns a root-relative file path back into a logical key.
func keyFromRel(rel string) string {
	return filepath.ToSlash(strings.TrimSuffix(rel, Extension))
}
