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

// NewLogger builds the JSON logger a binary logs through: debug level
// outside production, stdout always, plus a rotated file under LogDir when
// one is configured. closeLog releases the file.
func NewLogger(cfg *Config, name string) (logger *slog.Logger, closeLog func(), err error) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	closeLog = func() {}
	if cfg.LogDir != "" {
		f, err := OpenLogFile(cfg.LogDir, name, cfg.LogMaxFiles)
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(os.Stdout, f)
		closeLog = func() { _ = f.Close() }
	}

	logger = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	return logger.With("service", name), closeLog, nil
}

// OpenLogFile creates dir/<name>-<timestamp>.log and prunes the oldest files
// of the same name beyond keep. The caller closes the file.
func OpenLogFile(dir, name string, keep int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.log", name, time.Now().Format("2006-01-02T15-04-05")))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	if err := pruneLogs(dir, name, keep); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to prune old logs: %v\n", err)
	}
	return f, nil
}

// pruneLogs keeps the newest keep files. Timestamped names sort chronologically.
func pruneLogs(dir, name string, keep int) error {
	files, err := filepath.Glob(filepath.Join(dir, name+"-*.log"))
	if err != nil {
		return err
	}
	if keep < 1 || len(files) <= keep {
		return nil
	}

	sort.Strings(files)
	for _, file := range files[:len(files)-keep] {
		if err := os.Remove(file); err != nil {
			return fmt.Errorf("remove %s: %w", file, err)
		}
	}
	return nil
}
