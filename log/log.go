// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"io"
	"log/slog"
	"slices"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Logger is the logging surface used across packages.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	With(ctx ...any) Logger
}

// WithContext returns a logger carrying ctx. The root handler is resolved on every call,
// so package level loggers follow a later Init.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

type lazyLogger struct {
	ctx []any
}

func (l *lazyLogger) root() ethlog.Logger {
	return ethlog.Root().With(l.ctx...)
}

func (l *lazyLogger) Trace(msg string, ctx ...any) { l.root().Trace(msg, ctx...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { l.root().Debug(msg, ctx...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { l.root().Info(msg, ctx...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { l.root().Warn(msg, ctx...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { l.root().Error(msg, ctx...) }

func (l *lazyLogger) With(ctx ...any) Logger {
	return &lazyLogger{ctx: append(slices.Clone(l.ctx), ctx...)}
}

// Options configures the root handler.
type Options struct {
	Writer io.Writer
	// Verbosity uses the legacy 0-5 scale (crit .. trace).
	Verbosity int
	JSON      bool
	Color     bool
}

// Init replaces the root logger.
func Init(opts Options) {
	level := ethlog.FromLegacyLevel(opts.Verbosity)

	var handler slog.Handler
	if opts.JSON {
		handler = ethlog.JSONHandlerWithLevel(opts.Writer, level)
	} else {
		handler = ethlog.NewTerminalHandlerWithLevel(opts.Writer, level, opts.Color)
	}
	ethlog.SetDefault(ethlog.NewLogger(handler))
}

// Discard drops every record.
func Discard() {
	ethlog.SetDefault(ethlog.NewLogger(ethlog.DiscardHandler()))
}
