package slog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Handler formats logs like the default slog output: "YYYY/MM/DD HH:MM:SS LEVEL Message",
// followed by any attributes as key=value pairs.
type Handler struct {
	out    io.Writer
	mu     *sync.Mutex
	opts   *slog.HandlerOptions
	attrs  []slog.Attr
	prefix string // group names joined by dots, including the trailing dot
}

func NewHandler(out io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}

	return &Handler{out: out, mu: &sync.Mutex{}, opts: opts}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	if h.opts != nil && h.opts.Level != nil {
		return level >= h.opts.Level.Level()
	}

	return level >= slog.LevelInfo
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	buf := &bytes.Buffer{}
	ts := r.Time.Format("2006/01/02 15:04:05")
	lvl := strings.ToUpper(r.Level.String())
	fmt.Fprintf(buf, "%s %s %s", ts, lvl, r.Message)

	for _, attr := range h.attrs {
		writeAttr(buf, "", attr)
	}

	r.Attrs(func(attr slog.Attr) bool {
		writeAttr(buf, h.prefix, attr)

		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("unable to write log record: %w", err)
	}

	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	copyLogger := *h
	copyLogger.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	copyLogger.attrs = append(copyLogger.attrs, h.attrs...)

	for _, attr := range attrs {
		if h.prefix != "" {
			attr.Key = h.prefix + attr.Key
		}
		copyLogger.attrs = append(copyLogger.attrs, attr)
	}

	return &copyLogger
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	copyLogger := *h
	copyLogger.prefix = h.prefix + name + "."

	return &copyLogger
}

func writeAttr(buf *bytes.Buffer, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	if attr.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if attr.Key != "" {
			groupPrefix = prefix + attr.Key + "."
		}

		for _, member := range attr.Value.Group() {
			writeAttr(buf, groupPrefix, member)
		}

		return
	}

	value := attr.Value.String()
	if value == "" || strings.ContainsAny(value, " \t\"=") {
		value = fmt.Sprintf("%q", value)
	}

	fmt.Fprintf(buf, " %s%s=%s", prefix, attr.Key, value)
}
