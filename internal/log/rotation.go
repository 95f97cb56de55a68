package log

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB = 10
	defaultMaxFiles  = 5
)

// RotationConfig describes the ledger log file. Zero limits fall back to
// 10 MB per file and five backups.
type RotationConfig struct {
	File      string
	MaxSizeMB int
	MaxFiles  int
	Compress  bool
}

// NewRotatingWriter returns a lumberjack writer for cfg.File. The file is
// created owner-only up front since ledger logs carry account numbers.
func NewRotatingWriter(cfg RotationConfig) (*lumberjack.Logger, error) {
	if cfg.File == "" {
		return nil, errors.New("log file path must not be empty")
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = defaultMaxSizeMB
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = defaultMaxFiles
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file %q: %w", cfg.File, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close log file %q: %w", cfg.File, err)
	}

	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxFiles,
		Compress:   cfg.Compress,
	}, nil
}
