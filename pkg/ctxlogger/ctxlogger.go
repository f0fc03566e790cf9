package ctxlogger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// AppendCtx returns a context carrying the given attr in addition to any
// attrs already stored by previous AppendCtx calls.
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	if attrs, ok := parent.Value(ctxKey{}).([]slog.Attr); ok {
		newAttrs := make([]slog.Attr, len(attrs), len(attrs)+1)
		copy(newAttrs, attrs)
		return context.WithValue(parent, ctxKey{}, append(newAttrs, attr))
	}

	return context.WithValue(parent, ctxKey{}, []slog.Attr{attr})
}

// ContextHandler is a slog.Handler that adds attrs stored in the context
// via AppendCtx to every record.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		for _, attr := range attrs {
			r.AddAttrs(attr)
		}
	}

	return h.Handler.Handle(ctx, r)
}
