// Package storage owns the vault's durable, still-encrypted state: crypto
// metadata, the encrypted document and settings records, and the inert
// credential table. The store never sees plaintext or key material.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("storage: record not found")

	// ErrUnavailable wraps any underlying store failure. Callers must not
	// assume writes always succeed.
	ErrUnavailable = errors.New("storage: unavailable")
)

// CryptoMeta is written once at vault creation and immutable thereafter
// (backup import is the single exception; it proves the secret first).
type CryptoMeta struct {
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
}

// Record is one encrypted payload plus the material needed to decrypt it
// once the session key is re-derived.
type Record struct {
	Ciphertext []byte
	IV         []byte
	Salt       []byte
	UpdatedAt  time.Time
}

// Credential is an opaque second-factor record. The store keeps it without
// interpreting the payload.
type Credential struct {
	ID        string
	Payload   []byte
	CreatedAt time.Time
}

// Snapshot is the raw encrypted content handed to a backup transport.
// Settings may be absent on vaults that never persisted them.
type Snapshot struct {
	Document    Record
	Settings    *Record
	Salt        []byte
	GeneratedAt time.Time
}

// Store is the persistent key-value store behind a vault. Put/Get are
// atomic per record; ClearAll and ExportSnapshot are single transactions.
type Store interface {
	PutCryptoMeta(ctx context.Context, meta CryptoMeta) error
	GetCryptoMeta(ctx context.Context) (CryptoMeta, error)

	PutDocument(ctx context.Context, rec Record) error
	GetDocument(ctx context.Context) (Record, error)

	PutSettings(ctx context.Context, rec Record) error
	GetSettings(ctx context.Context) (Record, error)

	PutCredential(ctx context.Context, cred Credential) error
	ListCredentials(ctx context.Context) ([]Credential, error)
	DeleteCredential(ctx context.Context, id string) error

	// ClearAll empties all four tables in one transaction. All or nothing.
	ClearAll(ctx context.Context) error

	// ExportSnapshot reads the encrypted document and settings plus the
	// salt for handoff to a backup transport. Never decrypts.
	ExportSnapshot(ctx context.Context) (Snapshot, error)

	Close() error
}
