package fastpin

import "io"

// Encryptor encrypts export archives. Encryption uses only the public
// key; decryption requires unlocking the private key with a passphrase.
type Encryptor interface {
	// Setup generates a new key pair protected by the passphrase.
	Setup(passphrase string) error
	// IsConfigured reports whether key material exists.
	IsConfigured() bool
	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error
	// Unlock decrypts the private key and returns a context for decryption.
	Unlock(passphrase string) (DecryptionContext, error)
}

// DecryptionContext holds an unlocked private key.
type DecryptionContext interface {
	// Decrypt reads ciphertext from r and writes plaintext to w.
	Decrypt(r io.Reader, w io.Writer) error
}
