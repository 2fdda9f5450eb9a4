package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrDestroyed is returned by Use after Destroy.
var ErrDestroyed = errors.New("secure buffer destroyed")

// Buffer holds one sealed plaintext.
type Buffer struct {
	mu        sync.Mutex
	enclave   *memguard.Enclave
	size      int
	destroyed bool
}

// Seal moves data into a protected enclave. The source slice is wiped.
func Seal(data []byte) *Buffer {
	b := &Buffer{size: len(data)}
	if len(data) > 0 {
		// memguard refuses empty enclaves; Use hands empty input through as-is.
		b.enclave = memguard.NewEnclave(data)
	}
	return b
}

// Len returns the length of the sealed plaintext.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Use decrypts the enclave into a locked buffer, passes its bytes to fn and
// wipes them once fn returns.
func (b *Buffer) Use(fn func(plaintext []byte) error) error {
	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return ErrDestroyed
	}
	enclave := b.enclave
	b.mu.Unlock()

	if enclave == nil {
		return fn([]byte{})
	}

	locked, err := enclave.Open()
	if err != nil {
		return err
	}
	defer locked.Destroy()

	return fn(locked.Bytes())
}

// Destroy drops the enclave. It is idempotent.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.enclave = nil
	b.size = 0
	b.destroyed = true
}
