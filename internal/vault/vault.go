// Package vault is the state machine that owns one user's encrypted task
// document. It holds the session key only while unlocked, serializes every
// state-changing operation behind one mutex, persists each mutation
// immediately under a fresh IV, and auto-locks on inactivity.
package vault

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/EdoSag/Zero-Trust-Tasks/internal/audit"
	cr "github.com/EdoSag/Zero-Trust-Tasks/internal/crypto"
	"github.com/EdoSag/Zero-Trust-Tasks/internal/storage"
	"github.com/EdoSag/Zero-Trust-Tasks/internal/task"
)

// State of the vault. Uninitialized means no crypto metadata exists yet;
// Locked means metadata exists but no session key is held.
type State int

const (
	StateUninitialized State = iota
	StateLocked
	StateUnlocked
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLocked:
		return "locked"
	case StateUnlocked:
		return "unlocked"
	}
	return "unknown"
}

// Vault coordinates key derivation, the codec, and the persistent store.
// It is the exclusive owner of the decrypted document and the session key;
// neither outlives the unlocked state.
type Vault struct {
	mu    sync.Mutex
	store storage.Store
	log   *audit.Log

	state    State
	key      []byte
	salt     []byte
	doc      task.Document
	settings Settings

	lastActivity  time.Time
	now           func() time.Time
	checkInterval time.Duration
	stop          chan struct{}
	autoLockC     chan struct{}
}

// Open binds a vault to its store and probes for existing metadata to pick
// the starting state. It never derives keys.
func Open(ctx context.Context, store storage.Store) (*Vault, error) {
	v := &Vault{
		store:         store,
		log:           audit.New(),
		state:         StateUninitialized,
		settings:      DefaultSettings(),
		now:           time.Now,
		checkInterval: autoLockCheckInterval,
		autoLockC:     make(chan struct{}, 1),
	}
	_, err := store.GetCryptoMeta(ctx)
	switch {
	case err == nil:
		v.state = StateLocked
	case errors.Is(err, storage.ErrNotFound):
	default:
		return nil, err
	}
	return v, nil
}

// State returns the current lifecycle state.
func (v *Vault) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// AutoLocked delivers a signal each time the vault locks itself due to
// inactivity, so the caller layer can tell it apart from a manual lock.
func (v *Vault) AutoLocked() <-chan struct{} { return v.autoLockC }

// AuditLog exposes the hash-chained event log.
func (v *Vault) AuditLog() *audit.Log { return v.log }

// CheckStrength scores a candidate secret. Usable in any state.
func CheckStrength(secret string) cr.Strength { return cr.CheckStrength(secret) }

// Create initializes a brand-new vault from a secret: fresh salt, derived
// key, verifier, an empty document, and default settings, then transitions
// straight to Unlocked.
func (v *Vault) Create(ctx context.Context, secret string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != StateUninitialized {
		return ErrAlreadyInitialized
	}
	if secret == "" {
		return fmt.Errorf("%w: empty secret", ErrInvalidInput)
	}

	salt, err := cr.NewSalt()
	if err != nil {
		return err
	}
	key, err := cr.DeriveKey([]byte(secret), salt)
	if err != nil {
		return err
	}
	verifier, err := cr.ComputeVerifier([]byte(secret), salt)
	if err != nil {
		cr.Zero(key)
		return err
	}

	if err := v.store.PutCryptoMeta(ctx, storage.CryptoMeta{
		Salt:      salt,
		Verifier:  verifier,
		CreatedAt: v.now().UTC(),
	}); err != nil {
		cr.Zero(key)
		return err
	}

	v.adoptSession(key, salt)
	v.doc = task.NewDocument()
	v.settings = DefaultSettings()

	if err := v.persistDocument(ctx, v.doc); err != nil {
		v.dropSession()
		return err
	}
	if err := v.persistSettings(ctx, v.settings); err != nil {
		v.dropSession()
		return err
	}

	v.state = StateUnlocked
	v.lastActivity = v.now()
	v.startAutoLock()
	v.log.Append(audit.EventCreated)
	return nil
}

// Unlock checks the secret against the stored verifier, derives the
// session key, and decrypts the document and settings into memory.
// A decrypt failure after a matching verifier is ErrDataCorrupted, never
// masked as a wrong secret.
func (v *Vault) Unlock(ctx context.Context, secret string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == StateUnlocked {
		v.lastActivity = v.now()
		return nil
	}
	if secret == "" {
		return fmt.Errorf("%w: empty secret", ErrInvalidInput)
	}

	meta, err := v.store.GetCryptoMeta(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotInitialized
	}
	if err != nil {
		return err
	}

	verifier, err := cr.ComputeVerifier([]byte(secret), meta.Salt)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(verifier, meta.Verifier) != 1 {
		v.log.Append(audit.EventUnlockFail)
		return ErrWrongSecret
	}

	key, err := cr.DeriveKey([]byte(secret), meta.Salt)
	if err != nil {
		return err
	}

	doc, settings, err := v.loadDecrypted(ctx, key)
	if err != nil {
		cr.Zero(key)
		return err
	}

	v.adoptSession(key, meta.Salt)
	v.doc = doc
	v.settings = settings
	v.state = StateUnlocked
	v.lastActivity = v.now()
	v.startAutoLock()
	v.log.Append(audit.EventUnlocked)
	return nil
}

// Lock zeroes the session key and discards the in-memory document and
// settings. Always succeeds; idempotent when already locked.
func (v *Vault) Lock() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateUnlocked {
		return
	}
	v.lockNow(audit.EventLocked)
}

// lockNow is the one transition out of Unlocked. Caller holds mu.
func (v *Vault) lockNow(event string) {
	v.stopAutoLock()
	v.dropSession()
	v.doc = task.Document{}
	v.settings = DefaultSettings()
	v.state = StateLocked
	v.log.Append(event)
}

// RecordActivity resets the inactivity clock. The caller layer invokes it
// on any user interaction.
func (v *Vault) RecordActivity() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == StateUnlocked {
		v.lastActivity = v.now()
	}
}

// Document returns the decrypted document. Fails with ErrVaultLocked
// unless unlocked. The returned forest is copy-on-write: readers may hold
// it across further mutations.
func (v *Vault) Document() (task.Document, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateUnlocked {
		return task.Document{}, ErrVaultLocked
	}
	return v.doc, nil
}

// Wipe locks the vault and empties every stored table in one transaction.
// This is the explicit "delete everything" operation; it is unrecoverable.
func (v *Vault) Wipe(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == StateUnlocked {
		v.lockNow(audit.EventLocked)
	}
	if err := v.store.ClearAll(ctx); err != nil {
		return err
	}
	v.state = StateUninitialized
	v.log.Append(audit.EventWiped)
	return nil
}

// Close stops the timer and drops any live session.
func (v *Vault) Close() {
	v.Lock()
}

// adoptSession takes ownership of freshly derived key material. mu held.
func (v *Vault) adoptSession(key, salt []byte) {
	_ = cr.LockMemory(key)
	v.key = key
	v.salt = salt
}

// dropSession zeroes and releases the session key. mu held.
func (v *Vault) dropSession() {
	if v.key != nil {
		cr.Zero(v.key)
		_ = cr.UnlockMemory(v.key)
		v.key = nil
	}
	v.salt = nil
}

// loadDecrypted pulls and decrypts the document and settings records.
func (v *Vault) loadDecrypted(ctx context.Context, key []byte) (task.Document, Settings, error) {
	rec, err := v.store.GetDocument(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return task.Document{}, Settings{}, fmt.Errorf("%w: document record missing", ErrDataCorrupted)
	}
	if err != nil {
		return task.Document{}, Settings{}, err
	}

	pt, err := cr.Decrypt(key, rec.Ciphertext, rec.IV)
	if err != nil {
		return task.Document{}, Settings{}, fmt.Errorf("%w: document: %v", ErrDataCorrupted, err)
	}
	var doc task.Document
	err = json.Unmarshal(pt, &doc)
	cr.Zero(pt)
	if err != nil {
		return task.Document{}, Settings{}, fmt.Errorf("%w: document: %v", ErrDataCorrupted, err)
	}
	if doc.Tasks == nil {
		doc.Tasks = []task.Task{}
	}
	if doc.Categories == nil {
		doc.Categories = task.DefaultCategories()
	}

	settings := DefaultSettings()
	srec, err := v.store.GetSettings(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// pre-settings vaults fall back to defaults
	case err != nil:
		return task.Document{}, Settings{}, err
	default:
		spt, err := cr.Decrypt(key, srec.Ciphertext, srec.IV)
		if err != nil {
			return task.Document{}, Settings{}, fmt.Errorf("%w: settings: %v", ErrDataCorrupted, err)
		}
		err = json.Unmarshal(spt, &settings)
		cr.Zero(spt)
		if err != nil {
			return task.Document{}, Settings{}, fmt.Errorf("%w: settings: %v", ErrDataCorrupted, err)
		}
	}
	return doc, settings, nil
}

// persistDocument serializes and encrypts the whole document under a fresh
// IV and writes it. mu held; session key required.
func (v *Vault) persistDocument(ctx context.Context, doc task.Document) error {
	pt, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	ct, iv, err := cr.Encrypt(v.key, pt)
	cr.Zero(pt)
	if err != nil {
		return err
	}
	return v.store.PutDocument(ctx, storage.Record{
		Ciphertext: ct,
		IV:         iv,
		Salt:       v.salt,
		UpdatedAt:  v.now().UTC(),
	})
}

func (v *Vault) persistSettings(ctx context.Context, s Settings) error {
	pt, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ct, iv, err := cr.Encrypt(v.key, pt)
	cr.Zero(pt)
	if err != nil {
		return err
	}
	return v.store.PutSettings(ctx, storage.Record{
		Ciphertext: ct,
		IV:         iv,
		Salt:       v.salt,
		UpdatedAt:  v.now().UTC(),
	})
}

// mutate applies one document change under the mutex: transform, persist,
// and only then commit to memory, so a failed write never advances the
// in-memory forest.
func (v *Vault) mutate(ctx context.Context, apply func(task.Document) (task.Document, error)) (task.Document, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateUnlocked {
		return task.Document{}, ErrVaultLocked
	}
	next, err := apply(v.doc)
	if err != nil {
		return task.Document{}, err
	}
	if err := v.persistDocument(ctx, next); err != nil {
		return task.Document{}, err
	}
	v.doc = next
	v.lastActivity = v.now()
	return next, nil
}
