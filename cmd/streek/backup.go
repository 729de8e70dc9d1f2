package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/dukerupert/streek/internal/backup"
	"github.com/dukerupert/streek/internal/config"
	"github.com/dukerupert/streek/internal/database"
	"github.com/dukerupert/streek/internal/logging"
	"github.com/dukerupert/streek/internal/server"
	"github.com/dukerupert/streek/internal/store"
)

type backupCmd struct {
	DBPath   string        `name:"db-path" help:"SQLite database path." env:"STREEK_DB_PATH" default:":memory:"`
	LogLevel string        `help:"Log level (debug, info, warn, error)." env:"STREEK_LOG_LEVEL" default:"info"`
	Backup   config.Backup `embed:"" prefix:"backup-"`

	Run     backupRunCmd     `cmd:"" help:"Take a backup now."`
	List    backupListCmd    `cmd:"" help:"List recorded backups."`
	Restore backupRestoreCmd `cmd:"" help:"Download and decrypt a backup into a new database file."`
}

// open builds a manager over the configured database. The caller closes
// the returned function.
func (c *backupCmd) open() (*backup.Manager, func(), error) {
	cfg := config.Config{DBPath: c.DBPath, Backup: c.Backup}
	if !cfg.BackupEnabled() {
		return nil, nil, fmt.Errorf("set --backup-bucket or STREEK_BACKUP_BUCKET")
	}

	logger, logFile := logging.Setup(logging.Config{Level: c.LogLevel})
	db, err := database.Open(c.DBPath)
	if err != nil {
		logFile.Close()
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	m := backup.NewManager(server.BackupConfig(cfg), db, store.NewBackupStore(db), logger, nil)
	return m, func() { db.Close(); logFile.Close() }, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

type backupRunCmd struct{}

func (backupRunCmd) Run(parent *backupCmd) error {
	m, closeFn, err := parent.open()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signalContext()
	defer stop()

	b, err := m.Run(ctx)
	if err != nil {
		return err
	}
	if _, err := m.Prune(ctx); err != nil {
		return err
	}
	fmt.Printf("backup %d uploaded to %s (%d bytes)\n", b.ID, b.ObjectKey, b.SizeBytes)
	return nil
}

type backupListCmd struct {
	Limit int `help:"Maximum number of backups to show." default:"20"`
}

func (c *backupListCmd) Run(parent *backupCmd) error {
	m, closeFn, err := parent.open()
	if err != nil {
		return err
	}
	defer closeFn()

	list, err := m.List(c.Limit)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("no backups recorded")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSTATUS\tSIZE\tKEY")
	for _, b := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", b.ID, b.CreatedAt.Format("2006-01-02 15:04"), b.Status, b.SizeBytes, b.ObjectKey)
	}
	return tw.Flush()
}

type backupRestoreCmd struct {
	ID  int64  `arg:"" help:"Backup ID to restore."`
	Out string `help:"Path of the restored database file." type:"path" default:"streek-restored.db"`
}

func (c *backupRestoreCmd) Run(parent *backupCmd) error {
	m, closeFn, err := parent.open()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signalContext()
	defer stop()

	if err := m.Restore(ctx, c.ID, c.Out); err != nil {
		return err
	}
	fmt.Printf("backup %d restored to %s; point STREEK_DB_PATH at it to use it\n", c.ID, c.Out)
	return nil
}
