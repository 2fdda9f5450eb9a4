package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertSecretRedacted verifies that a secret value does not appear in a string.
//
// It checks that the secret value is not present in the output, and that the
// [REDACTED] marker is present instead.
//
//	logger.Debug("stored %s", logging.Secret("hunter2"))
//	AssertSecretRedacted(t, logger.GetOutput(), "hunter2")
func AssertSecretRedacted(t *testing.T, output, secretValue string) {
	t.Helper()

	assert.NotContains(t, output, secretValue,
		"Secret value %q should be redacted, but appears in output", secretValue)
	assert.Contains(t, output, "[REDACTED]",
		"Expected [REDACTED] marker when secret is used")
}

// AssertNoPlaintextOnDisk verifies that no file under root contains
// plaintext.
func AssertNoPlaintextOnDisk(t *testing.T, root, plaintext string) {
	t.Helper()

	files := StoreFiles(t, root)
	for _, path := range files {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), plaintext, "plaintext found in %s", path)
	}
}

// AssertErrorContains verifies that an error occurred and contains a substring.
func AssertErrorContains(t *testing.T, err error, substr string) {
	t.Helper()

	assert.Error(t, err, "Expected an error to occur")
	if err != nil {
		assert.Contains(t, err.Error(), substr,
			"Error message should contain %q", substr)
	}
}
