package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pmerrors "github.com/systmms/passmng/internal/errors"
	"github.com/systmms/passmng/tests/testutil"
)

func TestShowCommand_PrintsSecret(t *testing.T) {
	t.Parallel()

	b, cfg := newInitializedConfig(t)
	_, err := execute(t, NewInsertCommand(cfg), "hunter2\n", "email/work")
	require.NoError(t, err)

	out, err := execute(t, NewShowCommand(cfg), "", "email/work")

	require.NoError(t, err)
	assert.Equal(t, "hunter2\n", out)
	b.Logger.Clear()

	out, err = execute(t, NewShowCommand(cfg), "", "email/work")
	require.NoError(t, err)
	assert.Equal(t, "hunter2\n", out)
	b.Logger.AssertEmpty(t)
}

func TestShowCommand_NotFound(t *testing.T) {
	t.Parallel()

	b, cfg := newInitializedConfig(t)

	out, err := execute(t, NewShowCommand(cfg), "", "missing/key")

	require.ErrorIs(t, err, pmerrors.ErrNotFound)
	assert.Empty(t, out)
	assert.NoDirExists(t, filepath.Join(b.StoreDir(), "missing"), "show must not create directories")
}

func TestShowCommand_InvalidKey(t *testing.T) {
	t.Parallel()

	_, cfg := newInitializedConfig(t)

	_, err := execute(t, NewShowCommand(cfg), "", "a//b")

	assert.ErrorIs(t, err, pmerrors.ErrInvalidKey)
}

func TestShowCommand_DecryptFailure(t *testing.T) {
	t.Parallel()

	b, cfg := newInitializedConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(b.StoreDir(), "broken.gpg"), []byte("garbage"), 0o600))

	out, err := execute(t, NewShowCommand(cfg), "", "broken")

	require.ErrorIs(t, err, pmerrors.ErrToolFailed)
	var cmdErr pmerrors.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 2, cmdErr.ExitCode)
	assert.Contains(t, cmdErr.Stderr, "no valid OpenPGP data")
	assert.Empty(t, out)
}

func TestShowCommand_NotInitialized(t *testing.T) {
	t.Parallel()

	_, err := execute(t, NewShowCommand(testutil.NewTestConfig(t).Build()), "", "k")

	assert.ErrorIs(t, err, pmerrors.ErrStoreNotInitialized)
}
