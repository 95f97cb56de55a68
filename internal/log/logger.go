package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

type Options struct {
	Level     string
	File      string
	MaxSizeMB int
	MaxFiles  int
	Compress  bool
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds a JSON logger behind the redacting handler. Output goes to the
// rotating file when opts.File is set, otherwise to fallback. The returned
// closer releases the file.
func New(opts Options, fallback io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	out := fallback
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		writer, err := NewRotatingWriter(RotationConfig{
			File:      opts.File,
			MaxSizeMB: opts.MaxSizeMB,
			MaxFiles:  opts.MaxFiles,
			Compress:  opts.Compress,
		})
		if err != nil {
			return nil, nil, err
		}
		out, closer = writer, writer
	}
	if out == nil {
		out = io.Discard
	}

	base := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactingHandler(base)), closer, nil
}

func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", raw)
	}
}
