// Cipher contract tests: every cipher.Cipher backend must behave the same
// way from the store's point of view.

package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/passmng/internal/cipher"
)

// CipherTestCase defines a cipher backend under test.
type CipherTestCase struct {
	// Name is a descriptive name for this test case (usually the backend name)
	Name string

	// Cipher is the implementation to test
	Cipher cipher.Cipher

	// Recipient is passed to every Encrypt call
	Recipient string

	// Plaintexts overrides the default round-trip inputs
	Plaintexts map[string][]byte

	// SkipConcurrency skips the concurrency test if true
	SkipConcurrency bool
}

// DefaultPlaintexts are the round-trip inputs used when a test case sets none.
func DefaultPlaintexts() map[string][]byte {
	return map[string][]byte{
		"simple":    []byte("hunter2"),
		"multiline": []byte("password\nuser: alice\nurl: https://example.com\n"),
		"unicode":   []byte("pässwörd-密码"),
		"binary":    {0x00, 0xFF, 0x10, 0x80, 0x00},
		"empty":     {},
	}
}

// RunCipherContractTests runs all contract tests for a cipher:
//   - Name() returns a stable, non-empty value
//   - Decrypt(Encrypt(p)) == p for every plaintext
//   - Encrypt with no recipient fails
//   - Decrypt rejects garbage
//   - concurrent round trips do not interfere
func RunCipherContractTests(t *testing.T, tc CipherTestCase) {
	t.Helper()

	require.NotNil(t, tc.Cipher, "Cipher cannot be nil")
	require.NotEmpty(t, tc.Name, "Test case name cannot be empty")
	require.NotEmpty(t, tc.Recipient, "Recipient cannot be empty")

	if tc.Plaintexts == nil {
		tc.Plaintexts = DefaultPlaintexts()
	}

	t.Run("Name", func(t *testing.T) {
		name := tc.Cipher.Name()
		assert.NotEmpty(t, name)
		assert.Equal(t, name, tc.Cipher.Name(), "Name() must be consistent")
	})

	t.Run("RoundTrip", func(t *testing.T) {
		testCipherRoundTrip(t, tc)
	})

	t.Run("ErrorHandling", func(t *testing.T) {
		testCipherErrorHandling(t, tc)
	})

	if !tc.SkipConcurrency {
		t.Run("Concurrency", func(t *testing.T) {
			testCipherConcurrency(t, tc)
		})
	}
}

func testCipherRoundTrip(t *testing.T, tc CipherTestCase) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for name, plaintext := range tc.Plaintexts {
		t.Run(name, func(t *testing.T) {
			ciphertext, err := tc.Cipher.Encrypt(ctx, plaintext, tc.Recipient)
			require.NoError(t, err, "Encrypt() should succeed")
			require.NotEmpty(t, ciphertext, "Encrypt() must produce output")

			if len(plaintext) > 3 {
				assert.NotContains(t, string(ciphertext), string(plaintext),
					"ciphertext must not contain the plaintext")
			}

			decrypted, err := tc.Cipher.Decrypt(ctx, ciphertext)
			require.NoError(t, err, "Decrypt() should succeed")
			assert.Equal(t, len(plaintext), len(decrypted))
			assert.Equal(t, string(plaintext), string(decrypted))
		})
	}
}

func testCipherErrorHandling(t *testing.T, tc CipherTestCase) {
	t.Helper()

	ctx := context.Background()

	t.Run("Encrypt_NoRecipient", func(t *testing.T) {
		_, err := tc.Cipher.Encrypt(ctx, []byte("x"), "")
		assert.Error(t, err)
	})

	t.Run("Decrypt_Garbage", func(t *testing.T) {
		_, err := tc.Cipher.Decrypt(ctx, []byte("definitely not a ciphertext, just some bytes"))
		assert.Error(t, err)
	})
}

func testCipherConcurrency(t *testing.T, tc CipherTestCase) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping concurrency test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	const concurrency = 20
	var wg sync.WaitGroup
	errs := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			want := fmt.Sprintf("secret-%d", id)
			ct, err := tc.Cipher.Encrypt(ctx, []byte(want), tc.Recipient)
			if err != nil {
				errs <- fmt.Errorf("goroutine %d: Encrypt failed: %w", id, err)
				return
			}
			got, err := tc.Cipher.Decrypt(ctx, ct)
			if err != nil {
				errs <- fmt.Errorf("goroutine %d: Decrypt failed: %w", id, err)
				return
			}
			if string(got) != want {
				errs <- fmt.Errorf("goroutine %d: got %q, want %q", id, got, want)
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
