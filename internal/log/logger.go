/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package log sets up the application logger: slog on stderr (text or JSON),
// an optional rotating JSON file, and store tagging through the context.
package log

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	lj "gopkg.in/natefinch/lumberjack.v2"

	"effectcomposer/internal/version"
)

// Options controls Init. FromEnv reads them from
// QEC_LOG_LEVEL, QEC_LOG_FORMAT, QEC_LOG_SOURCE and QEC_LOG_FILE.
type Options struct {
	Level     string // debug|info|warn|error, default info
	Format    string // console|json
	AddSource bool
	File      string // rotated JSON log, optional
}

var (
	mu   sync.RWMutex
	root *slog.Logger
)

// L returns the application logger, initializing it from the environment on first use.
func L() *slog.Logger {
	mu.RLock()
	l := root
	mu.RUnlock()
	if l == nil {
		Init(FromEnv())
		mu.RLock()
		l = root
		mu.RUnlock()
	}
	return l
}

// Init replaces the application logger and slog's default.
func Init(opts Options) {
	level := parseLevel(opts.Level)
	sinks := fanout{newConsoleHandler(os.Stderr, opts.Format, level, opts.AddSource)}
	if file := strings.TrimSpace(opts.File); file != "" {
		w := &lj.Logger{Filename: file, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		sinks = append(sinks, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, AddSource: opts.AddSource}))
	}
	var h slog.Handler = sinks
	if len(sinks) == 1 {
		h = sinks[0]
	}
	l := slog.New(storeHandler{h}).With(
		slog.String("app", "effectcomposer"),
		slog.String("ver", version.Version),
	)

	mu.Lock()
	root = l
	mu.Unlock()
	slog.SetDefault(l)
}

func FromEnv() Options {
	return Options{
		Level:     os.Getenv("QEC_LOG_LEVEL"),
		Format:    os.Getenv("QEC_LOG_FORMAT"),
		AddSource: strings.EqualFold(os.Getenv("QEC_LOG_SOURCE"), "true"),
		File:      os.Getenv("QEC_LOG_FILE"),
	}
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

type storeKey struct{}

// WithStore returns a context whose records carry the settings store location
// as the "store" attribute. An empty path leaves ctx unchanged.
func WithStore(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, storeKey{}, path)
}

func storeFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	p, _ := ctx.Value(storeKey{}).(string)
	return p
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

// newConsoleHandler writes JSON for format "json" and short key=value lines otherwise.
func newConsoleHandler(w io.Writer, format string, level slog.Leveler, addSource bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: level, AddSource: addSource}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.NewJSONHandler(w, opts)
	}
	opts.ReplaceAttr = consoleAttr
	return slog.NewTextHandler(w, opts)
}

func consoleAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			return slog.String(a.Key, t.Format("15:04:05.000"))
		}
	case slog.LevelKey:
		if lv, ok := a.Value.Any().(slog.Level); ok {
			return slog.String(a.Key, levelTag(lv))
		}
	}
	return a
}

func levelTag(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DBG"
	case l < slog.LevelWarn:
		return "INF"
	case l < slog.LevelError:
		return "WRN"
	}
	return "ERR"
}

// storeHandler adds the "store" attribute from the record's context.
type storeHandler struct{ slog.Handler }

func (h storeHandler) Handle(ctx context.Context, r slog.Record) error {
	if p := storeFrom(ctx); p != "" {
		r.AddAttrs(slog.String("store", p))
	}
	return h.Handler.Handle(ctx, r)
}

func (h storeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return storeHandler{h.Handler.WithAttrs(attrs)}
}

func (h storeHandler) WithGroup(name string) slog.Handler {
	return storeHandler{h.Handler.WithGroup(name)}
}

// fanout sends each record to every sink that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(f, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
