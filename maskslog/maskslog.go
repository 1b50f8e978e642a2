// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package maskslog provides a slog.Handler which masks secret attribute values.
//
// Config values frequently contain credentials which must not reach
// logs verbatim. Wrapping a handler with [NewHandler] replaces the
// value of every attribute whose key matches a registered secret key,
// including attributes nested within groups, with a fixed mask.
package maskslog

import (
	"context"
	"log/slog"
)

const mask = "*****"

// Handler wraps an underlying slog.Handler and masks the values of
// secret attributes before delegating to it.
type Handler struct {
	base slog.Handler
	keys map[string]struct{}
}

// NewHandler returns a Handler which masks the value of any attribute
// whose key equals one of the given keys.
func NewHandler(base slog.Handler, keys ...string) *Handler {
	ks := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		ks[k] = struct{}{}
	}
	return &Handler{
		base: base,
		keys: ks,
	}
}

// Enabled implements the slog.Handler interface.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// Handle implements the slog.Handler interface.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	masked := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		masked.AddAttrs(h.maskAttr(attr))
		return true
	})
	return h.base.Handle(ctx, masked)
}

// WithAttrs implements the slog.Handler interface.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		masked[i] = h.maskAttr(attr)
	}
	return &Handler{
		base: h.base.WithAttrs(masked),
		keys: h.keys,
	}
}

// WithGroup implements the slog.Handler interface.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		base: h.base.WithGroup(name),
		keys: h.keys,
	}
}

func (h *Handler) maskAttr(attr slog.Attr) slog.Attr {
	if _, ok := h.keys[attr.Key]; ok {
		return slog.String(attr.Key, mask)
	}

	v := attr.Value.Resolve()
	if v.Kind() != slog.KindGroup {
		return attr
	}

	group := v.Group()
	masked := make([]slog.Attr, len(group))
	for i, ga := range group {
		masked[i] = h.maskAttr(ga)
	}
	return slog.Attr{
		Key:   attr.Key,
		Value: slog.GroupValue(masked...),
	}
}
