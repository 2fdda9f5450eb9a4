package store

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	pmerrors "github.com/systmms/passmng/internal/errors"
)

var errStopWalk = errors.New("stop walk")

// Keys lazily walks root and yields the logical key of every secret file.
// Traversal order is the lexical order of filepath.WalkDir. A traversal
// error is yielded once with an empty key and ends the sequence. The
// sequence is single-pass: each range walks the tree again. A root that is
// itself a symlink is followed; links below the root are not.
func Keys(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		resolved, err := filepath.EvalSymlinks(root)
		if err != nil {
			yield("", fmt.Errorf("%w: %v", pmerrors.ErrTraversalFailed, err))
			return
		}
		err = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), Extension) {
				return nil
			}
			// A bare ".gpg" file has no key.
			if d.Name() == Extension {
				return nil
			}
			rel, err := filepath.Rel(resolved, path)
			if err != nil {
				return err
			}
			if !yield(keyFromRel(rel), nil) {
				return errStopWalk
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopWalk) {
			yield("", fmt.Errorf("%w: %v", pmerrors.ErrTraversalFailed, err))
		}
	}
}

// ListKeys collects Keys into a sorted slice. On any traversal error it
// returns ErrTraversalFailed and no keys.
func ListKeys(root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, pmerrors.Wrap(pmerrors.ErrStoreNotInitialized, "%s does not exist", root)
		}
		return nil, fmt.Errorf("%w: %v", pmerrors.ErrTraversalFailed, err)
	}

	keys := []string{}
	for key, err := range Keys(root) {
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
