// Package backup takes encrypted snapshots of the Streek database and keeps
// them in S3-compatible object storage.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "modernc.org/sqlite"

	"github.com/dukerupert/streek/internal/model"
)

var (
	ErrDisabled = errors.New("backups are not configured")
	ErrNotFound = errors.New("backup not found")
	ErrBusy     = errors.New("a backup is already running")
)

// objectClient is the subset of the S3 API the manager uses.
type objectClient interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Store interface {
	Create(filename, objectKey string) (*model.Backup, error)
	GetByID(id int64) (*model.Backup, error)
	List(limit int) ([]model.Backup, error)
	MarkCompleted(id, sizeBytes int64) error
	MarkFailed(id int64, msg string) error
	DeleteOlderThan(before time.Time) ([]string, error)
}

type Config struct {
	Endpoint      string
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	Prefix        string
	Passphrase    string
	Interval      time.Duration
	RetentionDays int
}

// Enabled reports whether storage credentials and a passphrase are set.
func (c Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != "" && c.Passphrase != ""
}

type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	status   Status
	onStatus func(Status)

	db     *sql.DB
	store  Store
	client objectClient
	now    func() time.Time
	logger *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a manager. It stays disabled unless cfg.Enabled().
// onStatus, if set, is called after every state change.
func NewManager(cfg Config, db *sql.DB, store Store, logger *slog.Logger, onStatus func(Status)) *Manager {
	m := &Manager{
		cfg:      cfg,
		db:       db,
		store:    store,
		onStatus: onStatus,
		now:      time.Now,
		logger:   logger.With("component", "backup"),
		status:   Status{State: StateDisabled},
	}
	if cfg.Enabled() {
		m.client = newS3Client(cfg)
		m.status.State = StateIdle
	}
	return m
}

func newS3Client(cfg Config) *s3.Client {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := s3.Options{
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	if s.LastBackup == nil {
		s.LastBackup = m.status.LastBackup
	}
	m.status = s
	m.mu.Unlock()
	if m.onStatus != nil {
		m.onStatus(s)
	}
}

// Start runs a backup and a retention sweep every cfg.Interval. It does
// nothing when the manager is disabled or the interval is not positive.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled || m.cfg.Interval <= 0 {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	interval := m.cfg.Interval
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := m.Run(ctx); err != nil {
					m.logger.Error("scheduled backup", "error", err)
				}
				if _, err := m.Prune(ctx); err != nil {
					m.logger.Error("backup retention", "error", err)
				}
			}
		}
	}()
}

// Stop cancels the schedule and waits for it to exit.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (m *Manager) List(limit int) ([]model.Backup, error) {
	if limit <= 0 {
		limit = 20
	}
	return m.store.List(limit)
}

// Run snapshots the database, encrypts it and uploads it.
func (m *Manager) Run(ctx context.Context) (*model.Backup, error) {
	m.mu.Lock()
	switch m.status.State {
	case StateDisabled:
		m.mu.Unlock()
		return nil, ErrDisabled
	case StateRunning:
		m.mu.Unlock()
		return nil, ErrBusy
	}
	m.status.State = StateRunning
	m.mu.Unlock()
	m.setStatus(Status{State: StateRunning})

	start := m.now().UTC()
	filename := fmt.Sprintf("streek-%s.db.enc", start.Format("20060102T150405.000000000Z"))
	key := filename
	if m.cfg.Prefix != "" {
		key = m.cfg.Prefix + "/" + filename
	}

	record, err := m.store.Create(filename, key)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		backupsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("create backup record: %w", err)
	}

	size, err := m.upload(ctx, key)
	if err != nil {
		if markErr := m.store.MarkFailed(record.ID, err.Error()); markErr != nil {
			m.logger.Error("mark backup failed", "id", record.ID, "error", markErr)
		}
		m.setStatus(Status{State: StateError, Error: err.Error()})
		backupsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	if err := m.store.MarkCompleted(record.ID, size); err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, err
	}

	done := m.now().UTC()
	record.Status = model.BackupStatusCompleted
	record.SizeBytes = size
	record.CompletedAt = &done
	m.setStatus(Status{State: StateIdle, LastBackup: &done})
	backupsTotal.WithLabelValues("completed").Inc()
	m.logger.Info("backup completed", "key", key, "bytes", size, "duration", done.Sub(start))
	return record, nil
}

func (m *Manager) upload(ctx context.Context, key string) (int64, error) {
	snapshot, err := m.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	sealed, err := Seal(snapshot, m.cfg.Passphrase)
	if err != nil {
		return 0, fmt.Errorf("encrypt: %w", err)
	}

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(sealed),
		ContentLength: aws.Int64(int64(len(sealed))),
	})
	if err != nil {
		return 0, fmt.Errorf("upload %s: %w", key, err)
	}
	return int64(len(sealed)), nil
}

// snapshot writes a consistent copy with VACUUM INTO, which also works for
// in-memory databases.
func (m *Manager) snapshot(ctx context.Context) ([]byte, error) {
	dir, err := os.MkdirTemp("", "streek-backup-")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "snapshot.db")
	if _, err := m.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return nil, fmt.Errorf("vacuum into: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// Restore downloads backup id, decrypts it, checks its integrity and writes
// it to dst. dst must not exist; the live database is never touched.
func (m *Manager) Restore(ctx context.Context, id int64, dst string) error {
	if m.client == nil {
		return ErrDisabled
	}
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("restore target %s already exists", dst)
	}

	record, err := m.store.GetByID(id)
	if err != nil {
		return fmt.Errorf("get backup: %w", err)
	}
	if record == nil || record.Status != model.BackupStatusCompleted {
		return ErrNotFound
	}

	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(record.ObjectKey),
	})
	if err != nil {
		return fmt.Errorf("download %s: %w", record.ObjectKey, err)
	}
	defer out.Body.Close()

	sealed, err := io.ReadAll(out.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", record.ObjectKey, err)
	}
	plain, err := Open(sealed, m.cfg.Passphrase)
	if err != nil {
		return err
	}

	tmp := dst + ".partial"
	if err := os.WriteFile(tmp, plain, 0o600); err != nil {
		return fmt.Errorf("write restore: %w", err)
	}
	if err := checkIntegrity(ctx, tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("move restore into place: %w", err)
	}

	m.logger.Info("backup restored", "id", id, "path", dst)
	return nil
}

func checkIntegrity(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open restored db: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRowContext(ctx, `PRAGMA integrity_check`).Scan(&result); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

// Prune deletes backups older than the retention window and returns how
// many objects were removed.
func (m *Manager) Prune(ctx context.Context) (int, error) {
	if m.client == nil {
		return 0, nil
	}
	days := m.cfg.RetentionDays
	if days <= 0 {
		days = 30
	}

	keys, err := m.store.DeleteOlderThan(m.now().UTC().AddDate(0, 0, -days))
	if err != nil {
		return 0, fmt.Errorf("delete old backups: %w", err)
	}

	removed := 0
	for _, key := range keys {
		if _, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(m.cfg.Bucket),
			Key:    aws.String(key),
		}); err != nil {
			m.logger.Warn("delete backup object", "key", key, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		m.logger.Info("old backups pruned", "count", removed, "retention_days", days)
	}
	return removed, nil
}
