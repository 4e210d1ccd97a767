// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides the project-wide structured logger.
//
// Loggers derived before Init still follow the root handler, so packages may
// build their contextual logger at init time.
package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
)

// Logger is the logging handle used across the project.
type Logger = *slog.Logger

var rootHandler atomic.Pointer[slog.Handler]

func init() {
	setRootHandler(slog.LevelInfo)
}

func setRootHandler(level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	rootHandler.Store(&h)
}

// Init rebuilds the root handler with the given verbosity.
// 0 error, 1 warn, 2 info, 3 and up debug.
func Init(verbosity int) {
	var level slog.Level
	switch verbosity {
	case 0:
		level = slog.LevelError
	case 1:
		level = slog.LevelWarn
	case 2:
		level = slog.LevelInfo
	default:
		level = slog.LevelDebug
	}
	setRootHandler(level)
}

// Root returns the root logger.
func Root() Logger {
	return slog.New(&forwarder{})
}

// WithContext returns a logger carrying the given key/value context.
func WithContext(kvs ...any) Logger {
	return Root().With(kvs...)
}

// forwarder delegates to the current root handler, so loggers stay valid
// across Init calls.
type forwarder struct {
	attrs  []slog.Attr
	groups []string
}

func (f *forwarder) target() slog.Handler {
	h := *rootHandler.Load()
	for _, g := range f.groups {
		h = h.WithGroup(g)
	}
	if len(f.attrs) > 0 {
		h = h.WithAttrs(f.attrs)
	}
	return h
}

func (f *forwarder) Enabled(ctx context.Context, level slog.Level) bool {
	return (*rootHandler.Load()).Enabled(ctx, level)
}

func (f *forwarder) Handle(ctx context.Context, rec slog.Record) error {
	return f.target().Handle(ctx, rec)
}

func (f *forwarder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &forwarder{
		attrs:  append(append([]slog.Attr(nil), f.attrs...), attrs...),
		groups: f.groups,
	}
}

func (f *forwarder) WithGroup(name string) slog.Handler {
	return &forwarder{
		attrs:  f.attrs,
		groups: append(append([]string(nil), f.groups...), name),
	}
}
