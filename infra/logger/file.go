package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions configures the rotating log file.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type fileSink struct {
	*lumberjack.Logger
}

// Close detaches the file from new loggers and closes it.
func (f fileSink) Close() error {
	defaultsMu.Lock()
	if defaultFile == io.Writer(f) {
		defaultFile = nil
	}
	defaultsMu.Unlock()
	return f.Logger.Close()
}

// OpenFile makes every logger created afterwards also write JSON lines to a
// size-rotated file. The returned closer detaches and closes it.
func OpenFile(opts FileOptions) (io.Closer, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("log file path is required")
	}
	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("log directory: %w", err)
		}
	}
	f := fileSink{&lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}}
	defaultsMu.Lock()
	defaultFile = f
	defaultsMu.Unlock()
	return f, nil
}
