package backup

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dukerupert/streek/internal/database"
	"github.com/dukerupert/streek/internal/store"
)

type mockObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMockObjects() *mockObjects {
	return &mockObjects{objects: make(map[string][]byte)}
}

func (m *mockObjects) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockObjects) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockObjects) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

var testConfig = Config{
	Bucket:     "streek",
	AccessKey:  "key",
	SecretKey:  "secret",
	Prefix:     "test",
	Passphrase: "correct horse",
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupManager(t *testing.T) (*Manager, *mockObjects, *sql.DB) {
	t.Helper()
	db, err := database.Open(database.MemoryPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := store.SeedDefaults(db, time.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	objects := newMockObjects()
	m := NewManager(testConfig, db, store.NewBackupStore(db), discard(), nil)
	m.client = objects
	return m, objects, db
}

func TestManagerDisabled(t *testing.T) {
	m := NewManager(Config{Bucket: "b", AccessKey: "k", SecretKey: "s"}, nil, nil, discard(), nil)
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want disabled without a passphrase", m.Status().State)
	}
	if _, err := m.Run(context.Background()); !errors.Is(err, ErrDisabled) {
		t.Errorf("Run err = %v, want ErrDisabled", err)
	}

	// Start and Stop are no-ops
	m.Start(context.Background())
	m.Stop()
}

func TestManagerEnabled(t *testing.T) {
	m := NewManager(testConfig, nil, nil, discard(), nil)
	if m.Status().State != StateIdle {
		t.Errorf("state = %q, want idle", m.Status().State)
	}
}

func TestRunUploadsEncryptedSnapshot(t *testing.T) {
	var states []State
	m, objects, _ := setupManager(t)
	m.onStatus = func(s Status) { states = append(states, s.State) }

	b, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if b.ObjectKey != "test/"+b.Filename || b.SizeBytes == 0 {
		t.Errorf("backup = %+v", b)
	}

	data, ok := objects.objects[b.ObjectKey]
	if !ok {
		t.Fatalf("object %q not uploaded", b.ObjectKey)
	}
	if bytes.HasPrefix(data, []byte("SQLite format 3")) {
		t.Error("uploaded object is not encrypted")
	}
	plain, err := Open(data, testConfig.Passphrase)
	if err != nil {
		t.Fatalf("open uploaded object: %v", err)
	}
	if !bytes.HasPrefix(plain, []byte("SQLite format 3")) {
		t.Error("decrypted object is not a SQLite database")
	}

	if st := m.Status(); st.State != StateIdle || st.LastBackup == nil {
		t.Errorf("status = %+v", st)
	}
	if len(states) != 2 || states[0] != StateRunning || states[1] != StateIdle {
		t.Errorf("states = %v, want [running idle]", states)
	}
}

func TestRunUploadFailure(t *testing.T) {
	m, objects, _ := setupManager(t)
	objects.putErr = errors.New("bucket unavailable")

	if _, err := m.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if st := m.Status(); st.State != StateError || st.Error == "" {
		t.Errorf("status = %+v", st)
	}

	list, _ := m.List(10)
	if len(list) != 1 || list[0].Status != "failed" {
		t.Errorf("records = %+v", list)
	}

	objects.putErr = nil
	if _, err := m.Run(context.Background()); err != nil {
		t.Errorf("retry after failure: %v", err)
	}
}

func TestRestore(t *testing.T) {
	m, _, _ := setupManager(t)
	ctx := context.Background()

	b, err := m.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "restored.db")
	if err := m.Restore(ctx, b.ID, dst); err != nil {
		t.Fatalf("restore: %v", err)
	}

	restored, err := sql.Open("sqlite", dst)
	if err != nil {
		t.Fatalf("open restored: %v", err)
	}
	defer restored.Close()
	var name string
	if err := restored.QueryRow(`SELECT name FROM profile WHERE id = 1`).Scan(&name); err != nil {
		t.Fatalf("query restored: %v", err)
	}
	if name != "Alex Johnson" {
		t.Errorf("name = %q, want Alex Johnson", name)
	}

	if err := m.Restore(ctx, b.ID, dst); err == nil {
		t.Error("restore over an existing file should fail")
	}
	if err := m.Restore(ctx, 999, filepath.Join(t.TempDir(), "x.db")); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing backup err = %v, want ErrNotFound", err)
	}
}

func TestRestoreWrongPassphrase(t *testing.T) {
	m, _, _ := setupManager(t)
	ctx := context.Background()
	b, err := m.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	m.cfg.Passphrase = "battery staple"
	dst := filepath.Join(t.TempDir(), "restored.db")
	if err := m.Restore(ctx, b.ID, dst); !errors.Is(err, ErrDecrypt) {
		t.Errorf("err = %v, want ErrDecrypt", err)
	}
	if _, err := os.Stat(dst); !errors.Is(err, os.ErrNotExist) {
		t.Error("nothing should be written on a failed restore")
	}
}

func TestPrune(t *testing.T) {
	m, objects, db := setupManager(t)
	ctx := context.Background()

	b, err := m.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := db.Exec(`UPDATE backups SET created_at = ? WHERE id = ?`, time.Now().UTC().AddDate(0, 0, -45), b.ID); err != nil {
		t.Fatalf("age backup: %v", err)
	}

	removed, err := m.Prune(ctx)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := objects.objects[b.ObjectKey]; ok {
		t.Error("object should be deleted")
	}
}

func TestStopWaitsForLoop(t *testing.T) {
	m, _, _ := setupManager(t)
	m.cfg.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	cancel()
	m.Stop()
	m.Stop()
}
