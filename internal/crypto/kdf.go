package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

const (
	// SaltLength is the length of KDF salts in bytes (128 bits).
	SaltLength = 16

	// KeyLength is the length of derived keys in bytes (256 bits).
	KeyLength = 32

	// VerifierLength is the length of secret verifiers in bytes.
	VerifierLength = 32
)

// Argon2id cost parameters. 64 MiB, 3 passes, 4 lanes.
const (
	argonMemory  = 64 * 1024
	argonTime    = 3
	argonThreads = 4
)

// HKDF info labels. The key and the verifier are expanded from the same
// Argon2id stretch under different labels, so knowledge of the verifier
// yields nothing about the key.
var (
	infoKey      = []byte("taskvault/key/v1")
	infoVerifier = []byte("taskvault/verifier/v1")
)

var ErrInvalidInput = errors.New("crypto: invalid input")

// NewSalt returns a fresh random 16-byte salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveKey derives the 256-bit session key from a secret and salt.
// Deterministic: the same secret and salt always yield the same key.
func DeriveKey(secret, salt []byte) ([]byte, error) {
	return derive(secret, salt, infoKey, KeyLength)
}

// ComputeVerifier derives the non-reversible secret verifier. It is stored
// in place of the secret and is never usable as key material.
func ComputeVerifier(secret, salt []byte) ([]byte, error) {
	return derive(secret, salt, infoVerifier, VerifierLength)
}

func derive(secret, salt, info []byte, n int) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrInvalidInput
	}
	if len(salt) != SaltLength {
		return nil, ErrInvalidInput
	}

	stretch := argon2.IDKey(secret, salt, argonTime, argonMemory, argonThreads, KeyLength)
	defer Zero(stretch)

	out := make([]byte, n)
	stream := hkdf.New(sha256.New, stretch, salt, info)
	if _, err := io.ReadFull(stream, out); err != nil {
		return nil, err
	}
	return out, nil
}
