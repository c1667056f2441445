// Package logging builds the slog logger shared by the exporter.
package logging

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction.
type Options struct {
	// Verbose selects debug level; otherwise info.
	Verbose bool
	// File, when set, tees output into a size-rotated log file.
	File string
	// Out is the primary sink, normally os.Stderr.
	Out io.Writer
}

// New returns a text logger and a closer for any file sink it opened.
func New(opts Options) (*slog.Logger, io.Closer) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		out = io.MultiWriter(out, lj)
		closer = lj
	}

	h := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(h), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
