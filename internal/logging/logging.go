// Package logging builds the process logger: a slog front end over a
// charmbracelet/log handler, optionally teeing into a rotating file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// Format is text (default) or json.
	Format string
	// File, when set, receives a copy of every line with size-based rotation.
	File string
}

// Setup creates the logger, installs it as the slog default and returns it
// with a closer for the log file (a no-op when File is empty).
func Setup(cfg Config) (*slog.Logger, io.Closer) {
	return setup(cfg, os.Stderr)
}

func setup(cfg Config, stderr io.Writer) (*slog.Logger, io.Closer) {
	var w io.Writer = stderr
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		w = io.MultiWriter(stderr, file)
		closer = file
	}

	formatter := log.TextFormatter
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		formatter = log.JSONFormatter
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           ParseLevel(cfg.Level),
		Formatter:       formatter,
		Prefix:          "streek",
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, closer
}

// ParseLevel maps a level name to a charmbracelet level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
