package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Handler prints one line per record: time, level, every attribute value in
// brackets and then the message. Attribute keys are dropped.
type Handler struct {
	opts   slog.HandlerOptions
	attrs  []slog.Attr
	prefix string
	mu     *sync.Mutex
	out    io.Writer
}

func NewHandler(o io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &Handler{
		out:  o,
		opts: *opts,
		mu:   &sync.Mutex{},
	}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := *h
	n.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &n
}

// WithGroup only records the group name as a prefix of the message.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	n := *h
	n.prefix = h.prefix + name + ": "
	return &n
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Time.Format("[2006/01/02 15:04:05]"))
	if r.Level != slog.LevelInfo {
		sb.WriteString(" [" + r.Level.String() + "]")
	}

	writeAttr := func(a slog.Attr) bool {
		sb.WriteString(" [" + a.Value.String() + "]")
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)

	sb.WriteString(" ")
	sb.WriteString(h.prefix)
	sb.WriteString(r.Message)
	sb.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}
