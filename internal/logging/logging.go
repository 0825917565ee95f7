package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	ErrUnknownLevel = errors.New("unknown log level")
	ErrLogDir       = errors.New("failed to create log directory")
)

type Config struct {
	Level      string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: %s", ErrUnknownLevel, level)
}

// New builds a JSON logger. With a file configured, output goes to a
// rotated file, mirrored to stdout at debug level. The returned closer
// releases the file and is never nil.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	const fn = "Logging:New"

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("%s:%w", fn, err)
	}

	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("%s:%w:%w", fn, ErrLogDir, err)
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		closer = rotator
		out = rotator
		if level == slog.LevelDebug {
			out = io.MultiWriter(os.Stdout, rotator)
		}
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
