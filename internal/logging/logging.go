// Package logging builds the process logger. The terminal belongs to the
// UI, so records go to a size-rotated file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 5
	maxBackups = 3
	maxAgeDays = 28
)

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// File is the log file path. Empty writes to Writer instead.
	File string
	// Writer is used when File is empty; nil means os.Stderr.
	Writer io.Writer
}

// New returns a slog logger backed by a charmbracelet/log handler and a
// closer for the underlying file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	var w io.Writer
	var closer io.Closer = nopCloser{}

	switch {
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return nil, nil, err
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
		w, closer = rotator, rotator
	case opts.Writer != nil:
		w = opts.Writer
	default:
		w = os.Stderr
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(opts.Level),
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "dxcluster",
	})
	return slog.New(handler), closer, nil
}

// ParseLevel maps a settings value to a log level.
func ParseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
