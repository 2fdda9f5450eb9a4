// Package generate produces random passwords.
//
// Characters are drawn with crypto/rand using rand.Int, so every character
// of the charset is equally likely.
package generate

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	pmerrors "github.com/systmms/passmng/internal/errors"
)

const (
	// MinLength is the shortest password Password will produce.
	MinLength = 8
	// DefaultLength is used when the caller does not ask for a length.
	DefaultLength = 16
)

const (
	// Alphanumeric is the default charset.
	Alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// Symbols is appended to Alphanumeric for extended passwords.
	Symbols = "!@#$%^&*()-_=+[]{};:,.<>/?~"
	// Extended is the full charset used when symbols are requested.
	Extended = Alphanumeric + Symbols
)

// Password returns a random password of length characters. extended adds
// punctuation symbols to the alphanumeric charset.
func Password(length int, extended bool) (string, error) {
	return passwordFrom(rand.Reader, length, extended)
}

// Charset returns the alphabet Password draws from.
func Charset(extended bool) string {
	if extended {
		return Extended
	}
	return Alphanumeric
}

func passwordFrom(src io.Reader, length int, extended bool) (string, error) {
	if length < MinLength {
		return "", pmerrors.Wrap(pmerrors.ErrLengthTooSmall, "length %d is below the minimum of %d", length, MinLength)
	}

	charset := Charset(extended)
	size := big.NewInt(int64(len(charset)))

	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(src, size)
		if err != nil {
			return "", fmt.Errorf("%w: read random source: %v", pmerrors.ErrIO, err)
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}
