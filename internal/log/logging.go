// Package log builds the slog.Logger used by the command line tool.
//
// Records go to stderr so that rendered output on stdout can be
// redirected cleanly, colored when stderr is a terminal. An optional log
// file receives the same records as plain text.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// LevelTrace is below Debug and carries per-glyph calibration detail.
const LevelTrace slog.Level = -8

// ParseLevel maps trace, debug, info, warn and error to slog levels.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// SetupLogger builds the logger for logLevel, also writing to logFile when
// it is set, and installs it as the slog default. The returned closers
// must be closed on exit.
func SetupLogger(logLevel, logFile string) (*slog.Logger, []io.Closer, error) {
	level := ParseLevel(logLevel)
	opts := &slog.HandlerOptions{Level: level}

	var out fanout
	if term.IsTerminal(int(os.Stderr.Fd())) {
		out = append(out, &colorHandler{w: os.Stderr, level: level})
	} else {
		out = append(out, slog.NewTextHandler(os.Stderr, opts))
	}

	var closers []io.Closer
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, f)
		out = append(out, slog.NewTextHandler(f, opts))
	}

	var h slog.Handler = out
	if len(out) == 1 {
		h = out[0]
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger, closers, nil
}

// fanout passes each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}

var levelStyles = []struct {
	min   slog.Level
	name  string
	color string
}{
	{slog.LevelError, "ERROR", "\033[31m"},
	{slog.LevelWarn, "WARN", "\033[33m"},
	{slog.LevelInfo, "INFO", "\033[32m"},
	{slog.LevelDebug, "DEBUG", "\033[34m"},
	{LevelTrace, "TRACE", "\033[35m"},
}

// colorHandler writes one short line per record: time, colored level,
// message and key=value attributes. Groups are flattened.
type colorHandler struct {
	w     io.Writer
	level slog.Leveler
	attrs []slog.Attr
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	style := levelStyles[len(levelStyles)-1]
	for _, s := range levelStyles {
		if r.Level >= s.min {
			style = s
			break
		}
	}

	var sb strings.Builder
	sb.WriteString("\033[90m" + r.Time.Format("15:04:05.000") + "\033[0m ")
	sb.WriteString(style.color + style.name + "\033[0m " + r.Message)
	attr := func(a slog.Attr) bool {
		sb.WriteString(" " + a.Key + "=" + a.Value.String())
		return true
	}
	for _, a := range h.attrs {
		attr(a)
	}
	r.Attrs(attr)
	sb.WriteByte('\n')

	_, err := io.WriteString(h.w, sb.String())
	return err
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &colorHandler{w: h.w, level: h.level, attrs: append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)}
}

func (h *colorHandler) WithGroup(string) slog.Handler {
	return h
}
