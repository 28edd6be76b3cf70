// Package logging wires structured diagnostics through the process.
//
// Loggers are injected, never global: main builds one stderr handler and
// every component receives a scoped child via With. Warnings and progress
// go through slog so they can never interleave with the report itself,
// which is written directly to stdout or the output file.
package logging

import (
	"context"
	"io"
	"log/slog"
)

// New builds the process logger on w. Verbose enables debug-level output;
// the default level keeps only warnings and errors, so a clean scan stays
// quiet on stderr.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return NewAt(w, level)
}

// NewAt builds a logger on w at an explicit level. The watch daemon uses
// this to keep info-level rescan activity in its log file without
// turning on debug output.
func NewAt(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything. Tests and optional
// logger parameters default to this.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// Default returns logger if non-nil, otherwise a discard logger. Use at
// construction time:
//
//	logger = logging.Default(logger).With("component", "scanner")
func Default(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return Discard()
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
