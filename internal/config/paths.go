package config

import (
	"os"
	"path/filepath"
	"runtime"

	pmerrors "github.com/systmms/passmng/internal/errors"
)

// StoreDirName is the directory created under the platform data directory.
const StoreDirName = "password-store"

// DefaultPath returns PASSMNG_CONFIG, or config.yaml in the user config
// directory.
func DefaultPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "passmng", "config.yaml")
}

// DefaultStoreDir returns the per-user data directory joined with
// password-store.
func DefaultStoreDir() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", pmerrors.UserError{
			Message:    "Cannot determine the default store directory",
			Details:    err.Error(),
			Suggestion: "Pass --store or set PASSMNG_STORE_DIR",
			Err:        err,
		}
	}
	return filepath.Join(dir, StoreDirName), nil
}

// dataDir mirrors os.UserConfigDir for per-user application data.
func dataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LocalAppData"); dir != "" {
			return dir, nil
		}
		return "", pmerrors.Wrap(pmerrors.ErrMissingEnvironment, "%%LocalAppData%% is not defined")
	case "darwin", "ios":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" && filepath.IsAbs(dir) {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}
