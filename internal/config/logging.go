package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const logPrefix = appName + "-"

// SetupLogFile creates a timestamped log file in dir and prunes all but the
// newest maxFiles. The caller closes the returned file.
func SetupLogFile(dir string, maxFiles int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	name := filepath.Join(dir, fmt.Sprintf("%s%s.log", logPrefix, time.Now().Format("2006-01-02T15-04-05.000")))
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}
	if err := cleanupOldLogs(dir, maxFiles); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to clean up old logs: %v\n", err)
	}
	return f, nil
}

func cleanupOldLogs(dir string, maxFiles int) error {
	if maxFiles < 1 {
		maxFiles = 1
	}
	files, err := filepath.Glob(filepath.Join(dir, logPrefix+"*.log"))
	if err != nil {
		return err
	}
	if len(files) <= maxFiles {
		return nil
	}
	// Timestamped names sort chronologically.
	sort.Strings(files)
	for _, file := range files[:len(files)-maxFiles] {
		if err := os.Remove(file); err != nil {
			return fmt.Errorf("remove %s: %w", file, err)
		}
	}
	return nil
}

// NewLogger builds the JSON logger shared by every component.
func NewLogger(w io.Writer, cfg Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Dev() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})).
		With("app", appName, "env", cfg.Environment)
}
