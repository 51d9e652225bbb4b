package logging

import (
	"context"
	"log/slog"
)

// FieldSessionID identifies one server process run in aggregated logs.
const FieldSessionID = "session_id"

// sessionHandler stamps every record with the process session id.
type sessionHandler struct {
	next slog.Handler
	attr slog.Attr
}

func newSessionIDHandler(next slog.Handler, sessionID string) slog.Handler {
	if next == nil {
		return NoopHandler{}
	}
	return &sessionHandler{next: next, attr: slog.String(FieldSessionID, sessionID)}
}

func (h *sessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *sessionHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(h.attr)
	return h.next.Handle(ctx, record)
}

func (h *sessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sessionHandler{next: h.next.WithAttrs(attrs), attr: h.attr}
}

func (h *sessionHandler) WithGroup(name string) slog.Handler {
	return &sessionHandler{next: h.next.WithGroup(name), attr: h.attr}
}
