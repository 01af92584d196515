package vault

import (
	"errors"

	"github.com/EdoSag/Zero-Trust-Tasks/internal/backup"
	"github.com/EdoSag/Zero-Trust-Tasks/internal/storage"
)

// The vault reports every failure as one of these typed outcomes; nothing
// crosses the boundary as an opaque crash. Cryptographic and storage
// failures are never retried here — a wrong secret or a corrupted record
// cannot succeed on retry.
var (
	ErrInvalidInput       = errors.New("vault: invalid input")
	ErrAlreadyInitialized = errors.New("vault: already initialized")
	ErrNotInitialized     = errors.New("vault: not initialized")

	// ErrWrongSecret is a verifier mismatch on unlock.
	ErrWrongSecret = errors.New("vault: wrong secret")

	// ErrDataCorrupted is a decrypt-time integrity failure despite a
	// matching verifier. Distinct from ErrWrongSecret in logs even when
	// presented similarly to the user.
	ErrDataCorrupted = errors.New("vault: data corrupted")

	ErrVaultLocked  = errors.New("vault: locked")
	ErrTaskNotFound = errors.New("vault: task not found")

	ErrStorageUnavailable  = storage.ErrUnavailable
	ErrInvalidBackupFormat = backup.ErrInvalidFormat
)
