// Package config declares the server settings. Fields are bound by kong to
// flags with STREEK_* environment fallbacks; a .env file is loaded first
// when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port   int    `help:"HTTP listen port." env:"STREEK_PORT" default:"8080" validate:"min=1,max=65535"`
	DBPath string `name:"db-path" help:"SQLite database path. :memory: keeps state for the process lifetime only." env:"STREEK_DB_PATH" default:":memory:" validate:"required"`

	LogLevel  string `help:"Log level (debug, info, warn, error)." env:"STREEK_LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `help:"Log format (text, json)." env:"STREEK_LOG_FORMAT" default:"text" validate:"oneof=text json"`
	LogFile   string `help:"Also write logs to this file, rotated by size." env:"STREEK_LOG_FILE"`

	PointsSource string `help:"Where range points come from (table, history)." env:"STREEK_POINTS_SOURCE" default:"table" validate:"oneof=table history"`
	OncePerDay   bool   `help:"Allow one completion per challenge per day." env:"STREEK_ONCE_PER_DAY"`
	SyncHistory  bool   `help:"Append a history record for every completion." env:"STREEK_SYNC_HISTORY" default:"true" negatable:""`
	Seed         bool   `help:"Load the demo session on an empty database." env:"STREEK_SEED" default:"true" negatable:""`

	VAPIDPublicKey  string `name:"vapid-public-key" help:"VAPID public key for Web Push." env:"STREEK_VAPID_PUBLIC_KEY" validate:"required_with=VAPIDPrivateKey"`
	VAPIDPrivateKey string `name:"vapid-private-key" help:"VAPID private key for Web Push." env:"STREEK_VAPID_PRIVATE_KEY" validate:"required_with=VAPIDPublicKey"`
	PushSubscriber  string `help:"Contact URI sent to push services." env:"STREEK_PUSH_SUBSCRIBER" default:"mailto:noreply@streek.app"`
	ReminderHour    int    `help:"Hour of day for the streak reminder, -1 to disable." env:"STREEK_REMINDER_HOUR" default:"18" validate:"min=-1,max=23"`

	RateLimit int `help:"Requests per minute per client, 0 to disable." env:"STREEK_RATE_LIMIT" default:"60" validate:"min=0"`
	RateBurst int `help:"Burst size for the rate limiter." env:"STREEK_RATE_BURST" default:"30" validate:"min=1"`

	MetricsUser     string `help:"Basic auth user for /metrics. Empty leaves it open." env:"STREEK_METRICS_USER"`
	MetricsPassword string `help:"Basic auth password for /metrics." env:"STREEK_METRICS_PASSWORD" validate:"required_with=MetricsUser"`

	ShutdownTimeout time.Duration `help:"Graceful shutdown timeout." env:"STREEK_SHUTDOWN_TIMEOUT" default:"5s" validate:"gt=0"`

	Backup Backup `embed:"" prefix:"backup-"`
}

// Backup configures encrypted snapshots to S3-compatible storage. Leaving
// the bucket empty disables backups.
type Backup struct {
	Bucket        string        `help:"Bucket for database backups." env:"STREEK_BACKUP_BUCKET"`
	Endpoint      string        `help:"S3-compatible endpoint URL; empty means AWS." env:"STREEK_BACKUP_ENDPOINT" validate:"omitempty,url"`
	Region        string        `help:"Bucket region." env:"STREEK_BACKUP_REGION" default:"us-east-1"`
	AccessKey     string        `help:"Access key ID." env:"STREEK_BACKUP_ACCESS_KEY" validate:"required_with=Bucket"`
	SecretKey     string        `help:"Secret access key." env:"STREEK_BACKUP_SECRET_KEY" validate:"required_with=Bucket"`
	Prefix        string        `help:"Object key prefix." env:"STREEK_BACKUP_PREFIX" default:"streek"`
	Passphrase    string        `help:"Passphrase the snapshots are encrypted with." env:"STREEK_BACKUP_PASSPHRASE" validate:"required_with=Bucket,omitempty,min=8"`
	Interval      time.Duration `help:"Time between scheduled backups, 0 to only back up on demand." env:"STREEK_BACKUP_INTERVAL" default:"24h" validate:"min=0"`
	RetentionDays int           `help:"Days to keep backups." env:"STREEK_BACKUP_RETENTION_DAYS" default:"30" validate:"min=1"`
}

// PushEnabled reports whether VAPID keys are configured.
func (c Config) PushEnabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

// BackupEnabled reports whether a backup bucket is configured.
func (c Config) BackupEnabled() bool {
	return c.Backup.Bucket != ""
}

// Validate checks field constraints and returns one error naming every
// offending field.
func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// LoadDotEnv loads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
