/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package log configures the process-wide slog logger for Prism. Records
// carry the app name and version, the component and operation set by the
// helpers below, and any attributes attached to the context with
// ContextWith.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	charmlog "github.com/charmbracelet/log"
	lj "gopkg.in/natefinch/lumberjack.v2"

	"github.com/raghul017/Prism/internal/version"
)

// Options controls Init. FromEnv reads them from
//
//	PRISM_LOG_LEVEL   debug|info|warn|error (default info)
//	PRISM_LOG_FORMAT  console|text|json (default console)
//	PRISM_LOG_FILE    path of an extra JSON log, rotated by size
//	PRISM_LOG_SOURCE  true adds the caller position
type Options struct {
	Level string
	// Format selects the stderr handler: "console" is charmbracelet/log,
	// "text" and "json" are the slog built-ins.
	Format    string
	AddSource bool
	File      string
}

// Rotation limits for the log file, in megabytes, files and days.
const (
	fileMaxSizeMB  = 10
	fileMaxBackups = 3
	fileMaxAgeDays = 28
)

var current atomic.Pointer[slog.Logger]

// L returns the process logger, configuring it from the environment on
// first use.
func L() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return current.Load()
}

// Init replaces the process logger and slog's default.
func Init(opts Options) {
	lvl := parseLevel(opts.Level)
	hs := []slog.Handler{stderrHandler(os.Stderr, opts.Format, lvl, opts.AddSource)}
	if path := strings.TrimSpace(opts.File); path != "" {
		w := &lj.Logger{Filename: path, MaxSize: fileMaxSizeMB, MaxBackups: fileMaxBackups, MaxAge: fileMaxAgeDays, Compress: true}
		hs = append(hs, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	}
	var h slog.Handler = tee(hs)
	if len(hs) == 1 {
		h = hs[0]
	}
	l := slog.New(ctxAttrs{h}).With(slog.String("app", "prism"), slog.String("ver", version.Version))
	current.Store(l)
	slog.SetDefault(l)
}

func stderrHandler(w io.Writer, format string, lvl slog.Level, addSource bool) slog.Handler {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: addSource})
	case "text":
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: addSource})
	default:
		return newCharmHandler(w, lvl, addSource)
	}
}

// newCharmHandler is the colourful console handler.
func newCharmHandler(w io.Writer, lvl slog.Leveler, addSource bool) slog.Handler {
	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(lvl.Level()),
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		ReportCaller:    addSource,
	})
}

// FromEnv reads Options from the PRISM_LOG_* variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("PRISM_LOG_LEVEL", "info"),
		Format:    getenv("PRISM_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(os.Getenv("PRISM_LOG_SOURCE"), "true"),
		File:      os.Getenv("PRISM_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// WithComponent returns the process logger tagged with a component.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation tags l with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

type ctxKey struct{}

// ContextWith returns a context whose attrs are added to every record
// logged with it, after any attrs already carried.
func ContextWith(ctx context.Context, attrs ...slog.Attr) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	prev := attrsFromContext(ctx)
	return context.WithValue(ctx, ctxKey{}, append(prev[:len(prev):len(prev)], attrs...))
}

func attrsFromContext(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	a, _ := ctx.Value(ctxKey{}).([]slog.Attr)
	return a
}

// ctxAttrs copies context attrs onto each record.
type ctxAttrs struct{ slog.Handler }

func (h ctxAttrs) Handle(ctx context.Context, r slog.Record) error {
	if extra := attrsFromContext(ctx); len(extra) > 0 {
		r = r.Clone()
		r.AddAttrs(extra...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h ctxAttrs) WithAttrs(attrs []slog.Attr) slog.Handler {
	return ctxAttrs{h.Handler.WithAttrs(attrs)}
}

func (h ctxAttrs) WithGroup(name string) slog.Handler { return ctxAttrs{h.Handler.WithGroup(name)} }

// tee sends each record to every handler that accepts its level.
type tee []slog.Handler

func (t tee) Enabled(ctx context.Context, lvl slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, lvl) {
			return true
		}
	}
	return false
}

func (t tee) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t tee) WithGroup(name string) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}
