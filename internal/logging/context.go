package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type ctxKey struct{}

// MaxRequestIDLength bounds ids accepted from clients.
const MaxRequestIDLength = 64

// WithRequestID returns a context carrying id. An id that is empty, longer
// than MaxRequestIDLength or not made of [A-Za-z0-9._-] is replaced with a
// fresh UUID.
func WithRequestID(ctx context.Context, id string) context.Context {
	if !validRequestID(id) {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

func validRequestID(id string) bool {
	if id == "" || len(id) > MaxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		switch ch := id[i]; {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-', ch == '_', ch == '.':
		default:
			return false
		}
	}
	return true
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// requestIDHandler appends request_id to every record logged with a context
// that carries one.
type requestIDHandler struct {
	slog.Handler
}

func (h *requestIDHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *requestIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &requestIDHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *requestIDHandler) WithGroup(name string) slog.Handler {
	return &requestIDHandler{Handler: h.Handler.WithGroup(name)}
}
