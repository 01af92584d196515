package vault

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/EdoSag/Zero-Trust-Tasks/internal/storage"
	"github.com/EdoSag/Zero-Trust-Tasks/internal/task"
)

const testSecret = "Str0ngP@ssphrase!"

func newTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	s, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "vault.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestVault(t *testing.T) (*Vault, *storage.SQLiteStore) {
	t.Helper()
	s := newTestStore(t)
	v, err := Open(context.Background(), s)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(v.Close)
	return v, s
}

func mustCreate(t *testing.T, v *Vault) {
	t.Helper()
	if err := v.Create(context.Background(), testSecret); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestCreateTransitionsToUnlocked(t *testing.T) {
	v, _ := newTestVault(t)
	if v.State() != StateUninitialized {
		t.Fatalf("state = %v, want uninitialized", v.State())
	}
	mustCreate(t, v)
	if v.State() != StateUnlocked {
		t.Fatalf("state = %v, want unlocked", v.State())
	}

	doc, err := v.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if len(doc.Tasks) != 0 {
		t.Fatalf("new vault has %d tasks", len(doc.Tasks))
	}
	want := task.DefaultCategories()
	if len(doc.Categories) != len(want) {
		t.Fatalf("categories = %v, want %v", doc.Categories, want)
	}

	if err := v.Create(context.Background(), "another"); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second create: error = %v, want ErrAlreadyInitialized", err)
	}
}

func TestCreateRejectsEmptySecret(t *testing.T) {
	v, _ := newTestVault(t)
	if err := v.Create(context.Background(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
	if v.State() != StateUninitialized {
		t.Fatalf("state = %v after rejected create", v.State())
	}
}

func TestUnlockPaths(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t)

	if err := v.Unlock(ctx, testSecret); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("unlock before create: error = %v, want ErrNotInitialized", err)
	}

	mustCreate(t, v)
	v.Lock()
	if v.State() != StateLocked {
		t.Fatalf("state = %v, want locked", v.State())
	}

	if err := v.Unlock(ctx, "wrong"); !errors.Is(err, ErrWrongSecret) {
		t.Fatalf("wrong secret: error = %v, want ErrWrongSecret", err)
	}
	if v.State() != StateLocked {
		t.Fatalf("state = %v after failed unlock, want locked", v.State())
	}

	if err := v.Unlock(ctx, testSecret); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if v.State() != StateUnlocked {
		t.Fatalf("state = %v, want unlocked", v.State())
	}
}

func TestCorruptedDocumentIsNotWrongSecret(t *testing.T) {
	ctx := context.Background()
	v, store := newTestVault(t)
	mustCreate(t, v)
	v.Lock()

	rec, err := store.GetDocument(ctx)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	rec.Ciphertext[0] ^= 0xFF
	if err := store.PutDocument(ctx, rec); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}

	err = v.Unlock(ctx, testSecret)
	if !errors.Is(err, ErrDataCorrupted) {
		t.Fatalf("error = %v, want ErrDataCorrupted", err)
	}
	if errors.Is(err, ErrWrongSecret) {
		t.Fatal("corruption must not be reported as a wrong secret")
	}
}

func TestMutationsRequireUnlocked(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t)
	mustCreate(t, v)
	v.Lock()

	if _, err := v.AddTask(ctx, task.Task{Title: "x"}); !errors.Is(err, ErrVaultLocked) {
		t.Fatalf("AddTask: error = %v, want ErrVaultLocked", err)
	}
	if _, err := v.UpdateTask(ctx, []string{"id"}, task.Patch{}); !errors.Is(err, ErrVaultLocked) {
		t.Fatalf("UpdateTask: error = %v, want ErrVaultLocked", err)
	}
	if err := v.DeleteTask(ctx, []string{"id"}); !errors.Is(err, ErrVaultLocked) {
		t.Fatalf("DeleteTask: error = %v, want ErrVaultLocked", err)
	}
	if err := v.SaveSettings(ctx, DefaultSettings()); !errors.Is(err, ErrVaultLocked) {
		t.Fatalf("SaveSettings: error = %v, want ErrVaultLocked", err)
	}
	if _, err := v.Document(); !errors.Is(err, ErrVaultLocked) {
		t.Fatalf("Document: error = %v, want ErrVaultLocked", err)
	}
}

func TestDocumentSurvivesLockUnlock(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t)
	mustCreate(t, v)

	added, err := v.AddTask(ctx, task.Task{Title: "Buy milk", Priority: task.PriorityHigh})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	sub, err := v.AddSubtask(ctx, []string{added.ID}, task.Task{Title: "Check fridge first"})
	if err != nil {
		t.Fatalf("AddSubtask: %v", err)
	}

	before, err := v.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}

	v.Lock()
	if err := v.Unlock(ctx, testSecret); err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	after, err := v.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if len(after.Tasks) != len(before.Tasks) {
		t.Fatalf("task count changed across lock cycle: %d != %d", len(after.Tasks), len(before.Tasks))
	}
	got, err := task.Find(after.Tasks, []string{added.ID, sub.ID})
	if err != nil {
		t.Fatalf("subtask lost across lock cycle: %v", err)
	}
	if got.Title != "Check fridge first" {
		t.Fatalf("subtask title = %q", got.Title)
	}
}

func TestTaskCRUD(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t)
	mustCreate(t, v)

	added, err := v.AddTask(ctx, task.Task{
		Title:    "<script>x</script>Buy milk",
		Priority: task.PriorityHigh,
		Category: "Shopping",
		Tags:     []string{"<b>errand</b>"},
	})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if added.Title != "Buy milk" {
		t.Fatalf("title = %q, want sanitized %q", added.Title, "Buy milk")
	}
	if added.Tags[0] != "errand" {
		t.Fatalf("tag = %q, want sanitized", added.Tags[0])
	}
	if added.ID == "" || added.Subtasks == nil {
		t.Fatalf("normalization missing: %+v", added)
	}

	title := "Buy oat milk"
	done := true
	updated, err := v.UpdateTask(ctx, []string{added.ID}, task.Patch{Title: &title, Completed: &done})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Title != title || !updated.Completed {
		t.Fatalf("update not applied: %+v", updated)
	}
	if !updated.UpdatedAt.After(added.UpdatedAt) && !updated.UpdatedAt.Equal(added.UpdatedAt) {
		t.Fatal("updatedAt not refreshed")
	}

	if _, err := v.UpdateTask(ctx, []string{"no-such-id"}, task.Patch{Title: &title}); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("error = %v, want ErrTaskNotFound", err)
	}
	if _, err := v.AddSubtask(ctx, []string{"no-such-id"}, task.Task{Title: "x"}); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("error = %v, want ErrTaskNotFound", err)
	}

	if err := v.DeleteTask(ctx, []string{added.ID}); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	doc, _ := v.Document()
	if len(doc.Tasks) != 0 {
		t.Fatalf("forest not empty after delete: %+v", doc.Tasks)
	}
	if err := v.DeleteTask(ctx, []string{added.ID}); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("double delete: error = %v, want ErrTaskNotFound", err)
	}
}

func TestCategoryValidation(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t)
	mustCreate(t, v)

	if _, err := v.AddTask(ctx, task.Task{Title: "t", Category: "NoSuchCategory"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown category: error = %v, want ErrInvalidInput", err)
	}
	if _, err := v.AddTask(ctx, task.Task{Title: "t", Category: ""}); err != nil {
		t.Fatalf("empty category rejected: %v", err)
	}

	cats, err := v.AddCategory(ctx, "Errands")
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if cats[len(cats)-1] != "Errands" {
		t.Fatalf("categories = %v", cats)
	}
	again, err := v.AddCategory(ctx, "Errands")
	if err != nil {
		t.Fatalf("AddCategory dup: %v", err)
	}
	if len(again) != len(cats) {
		t.Fatalf("duplicate insert grew the set: %v", again)
	}

	added, err := v.AddTask(ctx, task.Task{Title: "run", Category: "Errands"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if _, err := v.RemoveCategory(ctx, "Errands"); err != nil {
		t.Fatalf("RemoveCategory: %v", err)
	}
	doc, _ := v.Document()
	if doc.HasCategory("Errands") {
		t.Fatal("category still in set after removal")
	}
	got, err := task.Find(doc.Tasks, []string{added.ID})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.Category != "" {
		t.Fatalf("task category = %q after set removal, want empty", got.Category)
	}
}

func TestSaveSettings(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t)
	mustCreate(t, v)

	s := Settings{AutoLockEnabled: true, AutoLockTimeoutMinutes: 30, Theme: ThemeLight}
	if err := v.SaveSettings(ctx, s); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	bad := s
	bad.AutoLockTimeoutMinutes = 0
	if err := v.SaveSettings(ctx, bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("timeout 0: error = %v, want ErrInvalidInput", err)
	}
	bad = s
	bad.AutoLockTimeoutMinutes = 61
	if err := v.SaveSettings(ctx, bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("timeout 61: error = %v, want ErrInvalidInput", err)
	}
	bad = s
	bad.Theme = "neon"
	if err := v.SaveSettings(ctx, bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad theme: error = %v, want ErrInvalidInput", err)
	}

	v.Lock()
	if err := v.Unlock(ctx, testSecret); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	got, err := v.Settings()
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if got != s {
		t.Fatalf("settings = %+v, want %+v", got, s)
	}
}

func TestWipe(t *testing.T) {
	ctx := context.Background()
	v, store := newTestVault(t)
	mustCreate(t, v)
	if _, err := v.AddTask(ctx, task.Task{Title: "gone soon"}); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	if err := v.Wipe(ctx); err != nil {
		t.Fatalf("Wipe: %v", err)
	}
	if v.State() != StateUninitialized {
		t.Fatalf("state = %v, want uninitialized", v.State())
	}
	if _, err := store.GetCryptoMeta(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("metadata survived wipe: %v", err)
	}

	// a wiped vault can be created again from scratch
	if err := v.Create(ctx, "NewSecret123!"); err != nil {
		t.Fatalf("Create after wipe: %v", err)
	}
}

func TestCredentialsAreInertRecords(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t)
	mustCreate(t, v)

	if err := v.RegisterCredential(ctx, "cred-1", []byte("opaque")); err != nil {
		t.Fatalf("RegisterCredential: %v", err)
	}
	creds, err := v.Credentials(ctx)
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if len(creds) != 1 || creds[0].ID != "cred-1" {
		t.Fatalf("creds = %+v", creds)
	}
	if err := v.EnableBiometric(ctx, true); err != nil {
		t.Fatalf("EnableBiometric: %v", err)
	}
	got, _ := v.Settings()
	if !got.BiometricEnabled {
		t.Fatal("biometric flag not set")
	}
	if err := v.RemoveCredential(ctx, "cred-1"); err != nil {
		t.Fatalf("RemoveCredential: %v", err)
	}
}

func TestFailedPersistDoesNotAdvanceDocument(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t)
	mustCreate(t, v)

	if _, err := v.AddTask(ctx, task.Task{Title: "keep me"}); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	// swap in a store that refuses writes
	v.mu.Lock()
	v.store = failingStore{Store: v.store}
	v.mu.Unlock()

	if _, err := v.AddTask(ctx, task.Task{Title: "lost"}); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("error = %v, want ErrStorageUnavailable", err)
	}
	doc, err := v.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if len(doc.Tasks) != 1 || doc.Tasks[0].Title != "keep me" {
		t.Fatalf("in-memory document advanced past a failed write: %+v", doc.Tasks)
	}
}

type failingStore struct {
	storage.Store
}

func (f failingStore) PutDocument(ctx context.Context, rec storage.Record) error {
	return storage.ErrUnavailable
}

func TestOpenResumesLockedState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.db")

	s1, err := storage.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	v1, err := Open(ctx, s1)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	mustCreate(t, v1)
	if _, err := v1.AddTask(ctx, task.Task{Title: "persisted"}); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	v1.Close()
	_ = s1.Close()

	s2, err := storage.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	v2, err := Open(ctx, s2)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer v2.Close()
	if v2.State() != StateLocked {
		t.Fatalf("state = %v, want locked", v2.State())
	}
	if err := v2.Unlock(ctx, testSecret); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	doc, _ := v2.Document()
	if len(doc.Tasks) != 1 || doc.Tasks[0].Title != "persisted" {
		t.Fatalf("document = %+v", doc.Tasks)
	}
}
