package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
)

// IVLength is the length of GCM nonces in bytes (96 bits).
const IVLength = 12

var (
	ErrInvalidKeyLength = errors.New("crypto: key must be 32 bytes")
	ErrInvalidIVLength  = errors.New("crypto: iv must be 12 bytes")

	// ErrAuthenticationFailed indicates the GCM tag did not verify:
	// wrong key, corrupted ciphertext, or tampering.
	ErrAuthenticationFailed = errors.New("crypto: message authentication failed")
)

// Encrypt seals plaintext with AES-256-GCM under a fresh random 96-bit IV.
// The IV is returned separately and must be stored with the ciphertext.
// The codec holds no state; plaintext is not retained beyond the call.
func Encrypt(key, plaintext []byte) (ciphertext, iv []byte, err error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	iv = make([]byte, IVLength)
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, err
	}

	ciphertext = aead.Seal(nil, iv, plaintext, nil)
	return ciphertext, iv, nil
}

// Decrypt opens a ciphertext produced by Encrypt. Any integrity violation
// fails with ErrAuthenticationFailed; corrupted plaintext is never returned.
func Decrypt(key, ciphertext, iv []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != IVLength {
		return nil, ErrInvalidIVLength
	}

	plaintext, err := aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeyLength {
		return nil, ErrInvalidKeyLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
