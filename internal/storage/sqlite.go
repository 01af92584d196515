package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Singleton row keys for the three single-record tables.
const (
	metaKey     = "master"
	documentKey = "tasks"
	settingsKey = "user_settings"
)

const schema = `
CREATE TABLE IF NOT EXISTS crypto_meta (
    id         TEXT PRIMARY KEY,
    salt       BLOB NOT NULL,
    verifier   BLOB NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS document (
    id         TEXT PRIMARY KEY,
    ciphertext BLOB NOT NULL,
    iv         BLOB NOT NULL,
    salt       BLOB NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS settings (
    id         TEXT PRIMARY KEY,
    ciphertext BLOB NOT NULL,
    iv         BLOB NOT NULL,
    salt       BLOB NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS credentials (
    id         TEXT PRIMARY KEY,
    payload    BLOB NOT NULL,
    created_at INTEGER NOT NULL
);
`

// SQLiteStore is a Store backed by a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the vault database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, unavailable(err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, unavailable(err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, unavailable(err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (s *SQLiteStore) PutCryptoMeta(ctx context.Context, meta CryptoMeta) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO crypto_meta (id, salt, verifier, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET salt=excluded.salt, verifier=excluded.verifier, created_at=excluded.created_at`,
		metaKey, meta.Salt, meta.Verifier, meta.CreatedAt.UnixMilli())
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *SQLiteStore) GetCryptoMeta(ctx context.Context) (CryptoMeta, error) {
	var meta CryptoMeta
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT salt, verifier, created_at FROM crypto_meta WHERE id = ?`, metaKey).
		Scan(&meta.Salt, &meta.Verifier, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return CryptoMeta{}, ErrNotFound
	}
	if err != nil {
		return CryptoMeta{}, unavailable(err)
	}
	meta.CreatedAt = time.UnixMilli(createdAt)
	return meta, nil
}

func (s *SQLiteStore) PutDocument(ctx context.Context, rec Record) error {
	return s.putRecord(ctx, "document", documentKey, rec)
}

func (s *SQLiteStore) GetDocument(ctx context.Context) (Record, error) {
	return s.getRecord(ctx, "document", documentKey)
}

func (s *SQLiteStore) PutSettings(ctx context.Context, rec Record) error {
	return s.putRecord(ctx, "settings", settingsKey, rec)
}

func (s *SQLiteStore) GetSettings(ctx context.Context) (Record, error) {
	return s.getRecord(ctx, "settings", settingsKey)
}

func (s *SQLiteStore) putRecord(ctx context.Context, table, key string, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO `+table+` (id, ciphertext, iv, salt, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET ciphertext=excluded.ciphertext, iv=excluded.iv, salt=excluded.salt, updated_at=excluded.updated_at`,
		key, rec.Ciphertext, rec.IV, rec.Salt, rec.UpdatedAt.UnixMilli())
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *SQLiteStore) getRecord(ctx context.Context, table, key string) (Record, error) {
	var rec Record
	var updatedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT ciphertext, iv, salt, updated_at FROM `+table+` WHERE id = ?`, key).
		Scan(&rec.Ciphertext, &rec.IV, &rec.Salt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, unavailable(err)
	}
	rec.UpdatedAt = time.UnixMilli(updatedAt)
	return rec, nil
}

func (s *SQLiteStore) PutCredential(ctx context.Context, cred Credential) error {
	if cred.ID == "" {
		return fmt.Errorf("%w: empty credential id", ErrUnavailable)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (id, payload, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload=excluded.payload`,
		cred.ID, cred.Payload, cred.CreatedAt.UnixMilli())
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *SQLiteStore) ListCredentials(ctx context.Context) ([]Credential, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, payload, created_at FROM credentials ORDER BY created_at`)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var out []Credential
	for rows.Next() {
		var cred Credential
		var createdAt int64
		if err := rows.Scan(&cred.ID, &cred.Payload, &createdAt); err != nil {
			return nil, unavailable(err)
		}
		cred.CreatedAt = time.UnixMilli(createdAt)
		out = append(out, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err)
	}
	return out, nil
}

func (s *SQLiteStore) DeleteCredential(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = ?`, id); err != nil {
		return unavailable(err)
	}
	return nil
}

// ClearAll empties all four tables in a single transaction.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable(err)
	}
	for _, table := range []string{"crypto_meta", "document", "settings", "credentials"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			_ = tx.Rollback()
			return unavailable(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return unavailable(err)
	}
	return nil
}

// ExportSnapshot reads document, settings, and salt in one transaction so
// the backup bundle is internally consistent.
func (s *SQLiteStore) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return Snapshot{}, unavailable(err)
	}
	defer tx.Rollback()

	var snap Snapshot
	var createdAt int64
	err = tx.QueryRowContext(ctx,
		`SELECT salt, created_at FROM crypto_meta WHERE id = ?`, metaKey).
		Scan(&snap.Salt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, unavailable(err)
	}

	var updatedAt int64
	err = tx.QueryRowContext(ctx,
		`SELECT ciphertext, iv, salt, updated_at FROM document WHERE id = ?`, documentKey).
		Scan(&snap.Document.Ciphertext, &snap.Document.IV, &snap.Document.Salt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, unavailable(err)
	}
	snap.Document.UpdatedAt = time.UnixMilli(updatedAt)

	var settings Record
	err = tx.QueryRowContext(ctx,
		`SELECT ciphertext, iv, salt, updated_at FROM settings WHERE id = ?`, settingsKey).
		Scan(&settings.Ciphertext, &settings.IV, &settings.Salt, &updatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// settings are optional in a snapshot
	case err != nil:
		return Snapshot{}, unavailable(err)
	default:
		settings.UpdatedAt = time.UnixMilli(updatedAt)
		snap.Settings = &settings
	}

	snap.GeneratedAt = time.Now().UTC()
	return snap, nil
}
