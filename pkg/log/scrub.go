package log

import (
	"context"
	"log/slog"
	"strings"
)

// ScrubMask replaces secret strings in emitted log text.
const ScrubMask = "**data_scrubbed**"

// ScrubHandler is a slog.Handler that masks registered secret strings
// in messages and string attribute values before delegating.
type ScrubHandler struct {
	inner   slog.Handler
	secrets []string
}

// NewScrubHandler wraps a handler with a secret mask. Empty secrets are
// ignored, so connection names resolved to "" never blank out logs.
func NewScrubHandler(inner slog.Handler, secrets []string) *ScrubHandler {
	filtered := make([]string, 0, len(secrets))

	for _, secret := range secrets {
		if secret != "" {
			filtered = append(filtered, secret)
		}
	}

	return &ScrubHandler{inner: inner, secrets: filtered}
}

func (h *ScrubHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ScrubHandler) Handle(ctx context.Context, record slog.Record) error {
	scrubbed := slog.NewRecord(record.Time, record.Level, h.scrub(record.Message), record.PC)

	record.Attrs(func(attr slog.Attr) bool {
		scrubbed.AddAttrs(h.scrubAttr(attr))

		return true
	})

	return h.inner.Handle(ctx, scrubbed)
}

func (h *ScrubHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	scrubbed := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		scrubbed = append(scrubbed, h.scrubAttr(attr))
	}

	return &ScrubHandler{inner: h.inner.WithAttrs(scrubbed), secrets: h.secrets}
}

func (h *ScrubHandler) WithGroup(name string) slog.Handler {
	return &ScrubHandler{inner: h.inner.WithGroup(name), secrets: h.secrets}
}

func (h *ScrubHandler) scrub(s string) string {
	for _, secret := range h.secrets {
		s = strings.ReplaceAll(s, secret, ScrubMask)
	}

	return s
}

func (h *ScrubHandler) scrubAttr(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() == slog.KindString {
		return slog.String(attr.Key, h.scrub(attr.Value.String()))
	}

	return attr
}
