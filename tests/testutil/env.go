package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetupTestEnv sets environment variables for the duration of a test.
//
// The original environment is restored automatically when the test completes.
// An empty value unsets the variable. Tests that call this must not call
// t.Parallel.
//
//	SetupTestEnv(t, map[string]string{
//	    "RECIPIENT":         "alice@example.org",
//	    "PASSMNG_STORE_DIR": "",
//	})
func SetupTestEnv(t *testing.T, vars map[string]string) {
	t.Helper()

	original := make(map[string]string)
	unset := make([]string, 0)

	for key, value := range vars {
		if orig, ok := os.LookupEnv(key); ok {
			original[key] = orig
		} else {
			unset = append(unset, key)
		}

		var err error
		if value == "" {
			err = os.Unsetenv(key)
		} else {
			err = os.Setenv(key, value)
		}
		if err != nil {
			t.Fatalf("Failed to set environment variable %s: %v", key, err)
		}
	}

	t.Cleanup(func() {
		for key, value := range original {
			if err := os.Setenv(key, value); err != nil {
				t.Errorf("Failed to restore environment variable %s: %v", key, err)
			}
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Errorf("Failed to unset environment variable %s: %v", key, err)
			}
		}
	})
}

// StoreFiles returns every regular file under root, including temp files.
func StoreFiles(t *testing.T, root string) []string {
	t.Helper()

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}
