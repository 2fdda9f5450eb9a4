// Package secure keeps plaintext secrets out of ordinary Go memory while
// they travel from the prompt to the cipher.
//
// Plaintext is sealed into a memguard enclave (XSalsa20Poly1305 encrypted,
// mlocked where the platform allows it) and only exposed inside Use:
//
//	buf := secure.Seal(plaintext) // plaintext is wiped
//	defer buf.Destroy()
//
//	err := buf.Use(func(p []byte) error {
//	    return store.Insert(ctx, key, p, recipient)
//	})
//
// The slice handed to Use is wiped when the callback returns, so it must
// not be retained. main calls memguard.Purge on exit to wipe anything left.
//
// This does not protect against an attacker with access to the running
// process or against hardware-level attacks.
package secure
