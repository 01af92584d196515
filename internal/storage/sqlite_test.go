package storage

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "vault.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCryptoMetaRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.GetCryptoMeta(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty store: error = %v, want ErrNotFound", err)
	}

	meta := CryptoMeta{
		Salt:      bytes.Repeat([]byte{0xAB}, 16),
		Verifier:  bytes.Repeat([]byte{0xCD}, 32),
		CreatedAt: time.Now().Truncate(time.Millisecond),
	}
	if err := s.PutCryptoMeta(ctx, meta); err != nil {
		t.Fatalf("PutCryptoMeta: %v", err)
	}
	got, err := s.GetCryptoMeta(ctx)
	if err != nil {
		t.Fatalf("GetCryptoMeta: %v", err)
	}
	if !bytes.Equal(got.Salt, meta.Salt) || !bytes.Equal(got.Verifier, meta.Verifier) {
		t.Fatal("crypto meta did not round-trip bit-identically")
	}
	if !got.CreatedAt.Equal(meta.CreatedAt) {
		t.Fatalf("createdAt = %v, want %v", got.CreatedAt, meta.CreatedAt)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := Record{
		Ciphertext: []byte{1, 2, 3, 4},
		IV:         bytes.Repeat([]byte{0x11}, 12),
		Salt:       bytes.Repeat([]byte{0x22}, 16),
		UpdatedAt:  time.Now().Truncate(time.Millisecond),
	}
	if err := s.PutDocument(ctx, rec); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}
	got, err := s.GetDocument(ctx)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if !bytes.Equal(got.Ciphertext, rec.Ciphertext) || !bytes.Equal(got.IV, rec.IV) || !bytes.Equal(got.Salt, rec.Salt) {
		t.Fatal("document record did not round-trip bit-identically")
	}

	// overwrite is atomic per record
	rec2 := rec
	rec2.Ciphertext = []byte{9, 9}
	if err := s.PutDocument(ctx, rec2); err != nil {
		t.Fatalf("PutDocument overwrite: %v", err)
	}
	got, err = s.GetDocument(ctx)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if !bytes.Equal(got.Ciphertext, rec2.Ciphertext) {
		t.Fatal("overwrite not visible")
	}

	if _, err := s.GetSettings(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("settings: error = %v, want ErrNotFound", err)
	}
	if err := s.PutSettings(ctx, rec); err != nil {
		t.Fatalf("PutSettings: %v", err)
	}
	if _, err := s.GetSettings(ctx); err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
}

func TestCredentials(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"cred-a", "cred-b"} {
		err := s.PutCredential(ctx, Credential{ID: id, Payload: []byte(id), CreatedAt: time.Now()})
		if err != nil {
			t.Fatalf("PutCredential(%s): %v", id, err)
		}
	}
	creds, err := s.ListCredentials(ctx)
	if err != nil {
		t.Fatalf("ListCredentials: %v", err)
	}
	if len(creds) != 2 {
		t.Fatalf("len = %d, want 2", len(creds))
	}
	if err := s.DeleteCredential(ctx, "cred-a"); err != nil {
		t.Fatalf("DeleteCredential: %v", err)
	}
	creds, err = s.ListCredentials(ctx)
	if err != nil {
		t.Fatalf("ListCredentials: %v", err)
	}
	if len(creds) != 1 || creds[0].ID != "cred-b" {
		t.Fatalf("creds after delete = %+v", creds)
	}
}

func TestClearAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	salt := bytes.Repeat([]byte{0x01}, 16)
	rec := Record{Ciphertext: []byte{1}, IV: make([]byte, 12), Salt: salt, UpdatedAt: time.Now()}
	if err := s.PutCryptoMeta(ctx, CryptoMeta{Salt: salt, Verifier: make([]byte, 32), CreatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutDocument(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if err := s.PutSettings(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if err := s.PutCredential(ctx, Credential{ID: "c", Payload: []byte{1}, CreatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}

	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if _, err := s.GetCryptoMeta(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("crypto_meta survived wipe: %v", err)
	}
	if _, err := s.GetDocument(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("document survived wipe: %v", err)
	}
	if _, err := s.GetSettings(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("settings survived wipe: %v", err)
	}
	creds, err := s.ListCredentials(ctx)
	if err != nil || len(creds) != 0 {
		t.Fatalf("credentials survived wipe: %v %v", creds, err)
	}
}

func TestExportSnapshot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.ExportSnapshot(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty store: error = %v, want ErrNotFound", err)
	}

	salt := bytes.Repeat([]byte{0x5A}, 16)
	doc := Record{Ciphertext: []byte("doc-ct"), IV: bytes.Repeat([]byte{2}, 12), Salt: salt, UpdatedAt: time.Now()}
	if err := s.PutCryptoMeta(ctx, CryptoMeta{Salt: salt, Verifier: make([]byte, 32), CreatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}

	snap, err := s.ExportSnapshot(ctx)
	if err != nil {
		t.Fatalf("ExportSnapshot: %v", err)
	}
	if !bytes.Equal(snap.Salt, salt) {
		t.Fatal("snapshot salt mismatch")
	}
	if !bytes.Equal(snap.Document.Ciphertext, doc.Ciphertext) || !bytes.Equal(snap.Document.IV, doc.IV) {
		t.Fatal("snapshot document mismatch")
	}
	if snap.Settings != nil {
		t.Fatal("expected nil settings in snapshot")
	}

	set := Record{Ciphertext: []byte("set-ct"), IV: bytes.Repeat([]byte{3}, 12), Salt: salt, UpdatedAt: time.Now()}
	if err := s.PutSettings(ctx, set); err != nil {
		t.Fatal(err)
	}
	snap, err = s.ExportSnapshot(ctx)
	if err != nil {
		t.Fatalf("ExportSnapshot: %v", err)
	}
	if snap.Settings == nil || !bytes.Equal(snap.Settings.Ciphertext, set.Ciphertext) {
		t.Fatal("snapshot settings mismatch")
	}
}
