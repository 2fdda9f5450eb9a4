package secure

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealWipesSource(t *testing.T) {
	t.Parallel()

	secret := []byte("hunter2")
	buf := Seal(secret)
	defer buf.Destroy()

	assert.Equal(t, make([]byte, 7), secret, "source slice must be zeroed")
	assert.Equal(t, 7, buf.Len())
}

func TestUseReturnsPlaintext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"password", []byte("super-secret-data")},
		{"binary", []byte{0x00, 0xFF, 0x10, 0x20}},
		{"empty", []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			expected := append([]byte(nil), tt.data...)
			buf := Seal(tt.data)
			defer buf.Destroy()

			var got []byte
			err := buf.Use(func(p []byte) error {
				got = append([]byte(nil), p...)
				return nil
			})

			require.NoError(t, err)
			assert.True(t, bytes.Equal(expected, got), "got %v, want %v", got, expected)
		})
	}
}

func TestUseMultipleTimes(t *testing.T) {
	t.Parallel()

	buf := Seal([]byte("test-secret"))
	defer buf.Destroy()

	for i := 0; i < 3; i++ {
		err := buf.Use(func(p []byte) error {
			assert.Equal(t, "test-secret", string(p))
			return nil
		})
		require.NoError(t, err, "iteration %d", i)
	}
}

func TestUsePropagatesCallbackError(t *testing.T) {
	t.Parallel()

	buf := Seal([]byte("x"))
	defer buf.Destroy()

	boom := errors.New("boom")
	err := buf.Use(func([]byte) error { return boom })

	assert.ErrorIs(t, err, boom)
}

func TestDestroy(t *testing.T) {
	t.Parallel()

	buf := Seal([]byte("secret-to-destroy"))

	buf.Destroy()
	buf.Destroy() // idempotent

	assert.Equal(t, 0, buf.Len())
	err := buf.Use(func([]byte) error {
		t.Fatal("callback must not run after Destroy")
		return nil
	})
	assert.ErrorIs(t, err, ErrDestroyed)
}
