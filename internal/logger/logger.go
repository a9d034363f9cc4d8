// Package logger turns config.LogConfig into the zerolog logger shared by the
// monitor, the store and the HTTP client.
package logger

import (
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aleister1102/etagwatch/internal/common"
	"github.com/aleister1102/etagwatch/internal/config"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger. Console output goes to stderr so that
// command output on stdout stays machine readable.
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	return NewWithConsole(cfg, os.Stderr)
}

// NewWithConsole is New with console output sent to console. When cfg.LogFile
// is set every event is also written to a lumberjack-rotated file.
func NewWithConsole(cfg config.LogConfig, console io.Writer) (zerolog.Logger, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}

	format := strings.ToLower(cfg.LogFormat)
	writers := []io.Writer{formatWriter(format, console, false)}

	if cfg.LogFile != "" {
		file, err := rotatingFile(cfg)
		if err != nil {
			return zerolog.Nop(), err
		}
		writers = append(writers, formatWriter(format, file, true))
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Anything still using the standard log package ends up in the same stream.
	stdlog.SetOutput(logger)
	stdlog.SetFlags(0)

	return logger, nil
}

// parseLevel maps a config level name to a zerolog level. Empty means info.
func parseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.InfoLevel, common.WrapError(err, "invalid log level")
	}
	return level, nil
}

// formatWriter wraps out for the configured format. json writes raw zerolog
// lines; text is the console layout without colors; anything else is the
// colored console layout, uncolored when plain is set.
func formatWriter(format string, out io.Writer, plain bool) io.Writer {
	switch format {
	case "json":
		return out
	case "text":
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime, NoColor: true}
	default:
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: plain}
	}
}

func rotatingFile(cfg config.LogConfig) (*lumberjack.Logger, error) {
	// lumberjack opens the file lazily and does not create its directory.
	dir := filepath.Dir(cfg.LogFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, common.WrapError(err, "failed to create log directory "+dir)
	}

	maxSize := cfg.MaxLogSizeMB
	if maxSize <= 0 {
		maxSize = config.DefaultMaxLogSizeMB
	}
	maxBackups := cfg.MaxLogBackups
	if maxBackups <= 0 {
		maxBackups = config.DefaultMaxLogBackups
	}

	return &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		LocalTime:  true,
	}, nil
}
