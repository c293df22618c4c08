// Package logging builds the zerolog loggers used by the binaries.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options ...
type Options struct {
	// Level is parsed with zerolog.ParseLevel. Empty means info.
	Level string

	// File, when set, receives JSON log lines rotated by size.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func (o *Options) setDefaults() {
	if o.Level == "" {
		o.Level = zerolog.InfoLevel.String()
	}

	if o.MaxSizeMB <= 0 {
		o.MaxSizeMB = 32
	}

	if o.MaxBackups <= 0 {
		o.MaxBackups = 3
	}

	if o.MaxAgeDays <= 0 {
		o.MaxAgeDays = 14
	}
}

// New returns a console logger, tee'd into a rotating file when opts.File
// is set. The returned closer flushes and closes that file.
func New(out io.Writer, opts Options) (zerolog.Logger, io.Closer, error) {
	opts.setDefaults()

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	if out == nil {
		out = os.Stderr
	}

	writers := []io.Writer{
		zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Stamp,
		},
	}

	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}

		writers = append(writers, file)
		closer = file
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
