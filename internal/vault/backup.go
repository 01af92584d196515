package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/EdoSag/Zero-Trust-Tasks/internal/audit"
	"github.com/EdoSag/Zero-Trust-Tasks/internal/backup"
	cr "github.com/EdoSag/Zero-Trust-Tasks/internal/crypto"
	"github.com/EdoSag/Zero-Trust-Tasks/internal/storage"
	"github.com/EdoSag/Zero-Trust-Tasks/internal/sync"
	"github.com/EdoSag/Zero-Trust-Tasks/internal/task"
)

// ExportBackup snapshots the still-encrypted document and settings into a
// self-describing bundle. The store never decrypts for export.
func (v *Vault) ExportBackup(ctx context.Context) (backup.Bundle, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateUnlocked {
		return backup.Bundle{}, ErrVaultLocked
	}
	snap, err := v.store.ExportSnapshot(ctx)
	if err != nil {
		return backup.Bundle{}, err
	}
	v.log.Append(audit.EventExported)
	return backup.FromSnapshot(snap), nil
}

// PushBackup hands the encrypted snapshot to an external transport. The
// transport receives ciphertext, IV, and salt only.
func (v *Vault) PushBackup(ctx context.Context, t sync.Transport) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateUnlocked {
		return ErrVaultLocked
	}
	snap, err := v.store.ExportSnapshot(ctx)
	if err != nil {
		return err
	}
	if err := t.Upload(ctx, snap.Document.Ciphertext, snap.Document.IV, snap.Salt); err != nil {
		return err
	}
	v.log.Append(audit.EventExported)
	return nil
}

// ImportBackup restores a vault from a bundle. The bundle carries no
// recoverable key, so the original secret must be re-supplied; it is
// proven by decrypting the bundle payload before anything is written.
// The vault is left Locked.
func (v *Vault) ImportBackup(ctx context.Context, raw []byte, secret string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	b, err := backup.Decode(raw)
	if err != nil {
		return err
	}
	if secret == "" {
		return fmt.Errorf("%w: empty secret", ErrInvalidInput)
	}

	key, err := cr.DeriveKey([]byte(secret), b.Salt)
	if errors.Is(err, cr.ErrInvalidInput) {
		return fmt.Errorf("%w: bad salt", ErrInvalidBackupFormat)
	}
	if err != nil {
		return err
	}
	defer cr.Zero(key)

	pt, err := cr.Decrypt(key, b.EncryptedData, b.IV)
	if err != nil {
		return ErrWrongSecret
	}
	var doc task.Document
	err = json.Unmarshal(pt, &doc)
	cr.Zero(pt)
	if err != nil {
		return fmt.Errorf("%w: payload is not a document", ErrInvalidBackupFormat)
	}

	if len(b.SettingsEncrypted) > 0 {
		spt, err := cr.Decrypt(key, b.SettingsEncrypted, b.SettingsIV)
		if err != nil {
			return fmt.Errorf("%w: settings do not decrypt under the document key", ErrInvalidBackupFormat)
		}
		cr.Zero(spt)
	}

	verifier, err := cr.ComputeVerifier([]byte(secret), b.Salt)
	if err != nil {
		return err
	}

	if v.state == StateUnlocked {
		v.lockNow(audit.EventLocked)
	}

	now := v.now().UTC()
	if err := v.store.PutCryptoMeta(ctx, storage.CryptoMeta{
		Salt:      b.Salt,
		Verifier:  verifier,
		CreatedAt: now,
	}); err != nil {
		return err
	}
	if err := v.store.PutDocument(ctx, storage.Record{
		Ciphertext: b.EncryptedData,
		IV:         b.IV,
		Salt:       b.Salt,
		UpdatedAt:  now,
	}); err != nil {
		return err
	}
	if len(b.SettingsEncrypted) > 0 {
		if err := v.store.PutSettings(ctx, storage.Record{
			Ciphertext: b.SettingsEncrypted,
			IV:         b.SettingsIV,
			Salt:       b.Salt,
			UpdatedAt:  now,
		}); err != nil {
			return err
		}
	}

	v.state = StateLocked
	v.log.Append(audit.EventImported)
	return nil
}

// RegisterCredential stores an opaque second-factor credential record.
func (v *Vault) RegisterCredential(ctx context.Context, id string, payload []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateUnlocked {
		return ErrVaultLocked
	}
	if id == "" {
		return fmt.Errorf("%w: empty credential id", ErrInvalidInput)
	}
	return v.store.PutCredential(ctx, storage.Credential{
		ID:        id,
		Payload:   payload,
		CreatedAt: v.now().UTC(),
	})
}

// Credentials lists the stored credential records.
func (v *Vault) Credentials(ctx context.Context) ([]storage.Credential, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateUnlocked {
		return nil, ErrVaultLocked
	}
	return v.store.ListCredentials(ctx)
}

// RemoveCredential deletes one credential record.
func (v *Vault) RemoveCredential(ctx context.Context, id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateUnlocked {
		return ErrVaultLocked
	}
	return v.store.DeleteCredential(ctx, id)
}
