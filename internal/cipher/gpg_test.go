package cipher_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/passmng/internal/cipher"
	pmerrors "github.com/systmms/passmng/internal/errors"
	"github.com/systmms/passmng/tests/testutil"
)

func TestGPGContract(t *testing.T) {
	t.Parallel()

	testutil.RunCipherContractTests(t, testutil.CipherTestCase{
		Name:      "gpg",
		Cipher:    cipher.NewGPGWithExecutor(cipher.GPGConfig{}, testutil.FakeGPG(), nil),
		Recipient: "test@example.com",
	})
}

func TestGPGEncryptInvocation(t *testing.T) {
	t.Parallel()

	mockExec := testutil.FakeGPG()
	g := cipher.NewGPGWithExecutor(cipher.GPGConfig{Binary: "gpg2", HomeDir: "/tmp/gnupg"}, mockExec, nil)

	_, err := g.Encrypt(context.Background(), []byte("hunter2"), "test@example.com")
	require.NoError(t, err)

	calls := mockExec.GetCalls("gpg2")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{
		"--batch", "--yes", "--quiet", "--homedir", "/tmp/gnupg",
		"--trust-model", "always", "--encrypt", "--recipient", "test@example.com", "--output", "-",
	}, calls[0].Args)
	assert.Equal(t, "hunter2", string(calls[0].Stdin), "plaintext must be streamed on stdin")
	mockExec.AssertNotCalled(t, "gpg")
}

func TestGPGDecryptInvocation(t *testing.T) {
	t.Parallel()

	mockExec := testutil.NewMockCommandExecutor()
	mockExec.AddResponse("gpg --batch --yes --quiet --decrypt", testutil.MockResponse{Stdout: []byte("hunter2")})

	g := cipher.NewGPGWithExecutor(cipher.GPGConfig{}, mockExec, nil)

	out, err := g.Decrypt(context.Background(), []byte("ciphertext"))
	require.NoError(t, err)
	assert.Equal(t, "hunter2", string(out))

	calls := mockExec.GetCalls("gpg")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"--batch", "--yes", "--quiet", "--decrypt", "--output", "-"}, calls[0].Args)
	assert.Equal(t, "ciphertext", string(calls[0].Stdin))
}

func TestGPGErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		response     testutil.MockResponse
		wantSentinel error
		wantContains string
		wantExitCode int
	}{
		{
			name:         "binary missing from PATH",
			response:     testutil.MockResponse{Err: fmt.Errorf("exec: \"gpg\": %w", exec.ErrNotFound)},
			wantSentinel: pmerrors.ErrToolNotFound,
			wantContains: "not found",
		},
		{
			name:         "binary not executable",
			response:     testutil.MockResponse{Err: &fs.PathError{Op: "fork/exec", Path: "/opt/gpg", Err: syscall.EACCES}},
			wantSentinel: pmerrors.ErrToolNotFound,
			wantContains: "permission denied",
		},
		{
			name:         "lookup rejected",
			response:     testutil.MockResponse{Err: &exec.Error{Name: "gpg", Err: fs.ErrPermission}},
			wantSentinel: pmerrors.ErrToolNotFound,
			wantContains: "permission denied",
		},
		{
			name:         "nonzero exit",
			response:     testutil.MockResponse{Stderr: []byte("gpg: decryption failed: No secret key\n"), ExitCode: 2},
			wantSentinel: pmerrors.ErrToolFailed,
			wantContains: "No secret key",
			wantExitCode: 2,
		},
		{
			name:         "pipe failure",
			response:     testutil.MockResponse{Err: errors.New("write |1: broken pipe")},
			wantSentinel: pmerrors.ErrIO,
			wantContains: "broken pipe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockExec := testutil.NewMockCommandExecutor()
			mockExec.DefaultResponse = &tt.response
			g := cipher.NewGPGWithExecutor(cipher.GPGConfig{}, mockExec, nil)

			_, err := g.Decrypt(context.Background(), []byte("x"))

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantSentinel)
			assert.Contains(t, err.Error(), tt.wantContains)

			if tt.wantExitCode != 0 {
				var cmdErr pmerrors.CommandError
				require.ErrorAs(t, err, &cmdErr)
				assert.Equal(t, tt.wantExitCode, cmdErr.ExitCode)
			}
		})
	}
}

func TestGPGEncryptEmptyOutput(t *testing.T) {
	t.Parallel()

	mockExec := testutil.NewMockCommandExecutor() // non-strict: empty success
	g := cipher.NewGPGWithExecutor(cipher.GPGConfig{}, mockExec, nil)

	_, err := g.Encrypt(context.Background(), []byte("hunter2"), "test@example.com")

	assert.ErrorIs(t, err, pmerrors.ErrToolFailed)
}

func TestGPGEncryptRequiresRecipient(t *testing.T) {
	t.Parallel()

	mockExec := testutil.FakeGPG()
	g := cipher.NewGPGWithExecutor(cipher.GPGConfig{}, mockExec, nil)

	_, err := g.Encrypt(context.Background(), []byte("hunter2"), "")

	assert.ErrorIs(t, err, pmerrors.ErrMissingEnvironment)
	assert.Equal(t, 0, mockExec.CallCount(), "gpg must not run without a recipient")
}

func TestGPGCancelledContext(t *testing.T) {
	t.Parallel()

	mockExec := testutil.NewMockCommandExecutor()
	mockExec.DefaultResponse = &testutil.MockResponse{ExitCode: -1}
	g := cipher.NewGPGWithExecutor(cipher.GPGConfig{}, mockExec, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Decrypt(ctx, []byte("x"))

	assert.ErrorIs(t, err, pmerrors.ErrToolFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGPGRealBinaryMissing(t *testing.T) {
	t.Parallel()

	g := cipher.NewGPG(cipher.GPGConfig{Binary: "passmng-no-such-gpg-xyz"})

	_, err := g.Decrypt(context.Background(), []byte("x"))

	assert.ErrorIs(t, err, pmerrors.ErrToolNotFound)
}

func TestGPGRealBinaryNotExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("execute permission bits are not used on windows")
	}
	t.Parallel()

	binary := filepath.Join(t.TempDir(), "gpg")
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o644))
	g := cipher.NewGPG(cipher.GPGConfig{Binary: binary})

	_, err := g.Decrypt(context.Background(), []byte("x"))

	assert.ErrorIs(t, err, pmerrors.ErrToolNotFound)
	assert.NotErrorIs(t, err, pmerrors.ErrIO)
}

func TestGPGDecryptNonZeroExit(t *testing.T) {
	t.Parallel()

	mockExec := testutil.NewMockCommandExecutor()
	mockExec.AddErrorResponse("gpg --batch --yes --quiet --decrypt --output -", "gpg: decryption failed: Bad session key\n", 2)
	g := cipher.NewGPGWithExecutor(cipher.GPGConfig{}, mockExec, nil)

	_, err := g.Decrypt(context.Background(), []byte("ciphertext"))

	require.ErrorIs(t, err, pmerrors.ErrToolFailed)
	testutil.AssertErrorContains(t, err, "Bad session key")
	var cmdErr pmerrors.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 2, cmdErr.ExitCode)
	assert.Equal(t, "gpg: decryption failed: Bad session key", cmdErr.Stderr)
	mockExec.AssertCalled(t, "gpg")
}
