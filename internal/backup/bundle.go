// Package backup encodes vault snapshots as self-describing bundles for
// handoff to an external transport. Bundles carry only already-encrypted
// bytes plus the salt; no recoverable key material.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/EdoSag/Zero-Trust-Tasks/internal/storage"
)

const (
	// BundleType tags every bundle; anything else is rejected on import.
	BundleType = "vault-backup"

	// FormatVersion is the current bundle format version.
	FormatVersion = 1
)

var ErrInvalidFormat = errors.New("backup: invalid bundle format")

// Bundle is the export format. Byte fields serialize as base64 in JSON.
type Bundle struct {
	Type              string    `json:"type"`
	Version           int       `json:"version"`
	EncryptedData     []byte    `json:"encryptedData"`
	IV                []byte    `json:"iv"`
	Salt              []byte    `json:"salt"`
	SettingsEncrypted []byte    `json:"settingsEncrypted,omitempty"`
	SettingsIV        []byte    `json:"settingsIv,omitempty"`
	ExportedAt        time.Time `json:"exportedAt"`
}

// FromSnapshot builds a bundle from a store snapshot.
func FromSnapshot(snap storage.Snapshot) Bundle {
	b := Bundle{
		Type:          BundleType,
		Version:       FormatVersion,
		EncryptedData: snap.Document.Ciphertext,
		IV:            snap.Document.IV,
		Salt:          snap.Salt,
		ExportedAt:    snap.GeneratedAt,
	}
	if snap.Settings != nil {
		b.SettingsEncrypted = snap.Settings.Ciphertext
		b.SettingsIV = snap.Settings.IV
	}
	return b
}

// Encode serializes the bundle as JSON.
func (b Bundle) Encode() ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// Decode parses and validates a bundle. Wrong type tags, unsupported
// versions, and structurally incomplete bundles all fail with
// ErrInvalidFormat.
func Decode(data []byte) (Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if err := b.Validate(); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

// Validate checks the self-describing fields and required payload.
func (b Bundle) Validate() error {
	if b.Type != BundleType {
		return fmt.Errorf("%w: type %q", ErrInvalidFormat, b.Type)
	}
	if b.Version != FormatVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidFormat, b.Version)
	}
	if len(b.EncryptedData) == 0 || len(b.IV) == 0 || len(b.Salt) == 0 {
		return fmt.Errorf("%w: missing payload", ErrInvalidFormat)
	}
	if len(b.SettingsEncrypted) > 0 && len(b.SettingsIV) == 0 {
		return fmt.Errorf("%w: settings without iv", ErrInvalidFormat)
	}
	return nil
}
