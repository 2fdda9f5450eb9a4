package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	pmerrors "github.com/systmms/passmng/internal/errors"
)

const filePerm = 0o600

// FileStore reads, writes and deletes single secret files. Writes go through
// a sibling temp file that is synced before it is renamed into place, so the
// final path only ever holds a complete old or a complete new secret.
type FileStore struct {
	// root bounds empty-directory pruning after Delete.
	root string

	// beforeRename runs after the temp file is synced and closed, just
	// before the rename. Tests use it to inspect the intermediate state.
	beforeRename func(tmpPath string) error
}

// NewFileStore returns a FileStore rooted at root.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// tempPath is unique per process so two concurrent writers never share a
// temp file; the last rename wins.
func tempPath(path string) string {
	return fmt.Sprintf("%s.tmp.%d", path, os.Getpid())
}

// Write atomically replaces path with data.
func (f *FileStore) Write(path string, data []byte) error {
	tmp := tempPath(path)

	fh, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", pmerrors.ErrIO, err)
	}

	if err := writeAndSync(fh, data); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if f.beforeRename != nil {
		if err := f.beforeRename(tmp); err != nil {
			_ = os.Remove(tmp)
			return err
		}
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: rename into place: %v", pmerrors.ErrIO, err)
	}

	syncDir(filepath.Dir(path))
	return nil
}

func writeAndSync(fh *os.File, data []byte) error {
	if _, err := fh.Write(data); err != nil {
		fh.Close()
		return fmt.Errorf("%w: write temp file: %v", pmerrors.ErrIO, err)
	}
	if err := fh.Sync(); err != nil {
		fh.Close()
		return fmt.Errorf("%w: sync temp file: %v", pmerrors.ErrIO, err)
	}
	if err := fh.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %v", pmerrors.ErrIO, err)
	}
	return nil
}

// syncDir persists the rename itself. Not every platform can fsync a
// directory, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

// Read returns the full contents of path.
func (f *FileStore) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, pmerrors.Wrap(pmerrors.ErrNotFound, "no secret at %s", path)
		}
		return nil, fmt.Errorf("%w: %v", pmerrors.ErrReadFailed, err)
	}
	return data, nil
}

// Delete removes path and prunes parent directories left empty, stopping at
// the store root.
func (f *FileStore) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return pmerrors.Wrap(pmerrors.ErrNotFound, "no secret at %s", path)
		}
		return fmt.Errorf("%w: remove: %v", pmerrors.ErrIO, err)
	}
	f.prune(filepath.Dir(path))
	return nil
}

func (f *FileStore) prune(dir string) {
	if f.root == "" {
		return
	}
	root := filepath.Clean(f.root)
	for dir = filepath.Clean(dir); dir != root && len(dir) > len(root); dir = filepath.Dir(dir) {
		// os.Remove refuses non-empty directories, which ends the walk.
		if err := os.Remove(dir); err != nil {
			return
		}
	}
}
