package logs

import (
	"context"
	"crypto/rand"
)

// NewSpan derives a context carrying a fresh Span. An empty parent defaults
// to the span already in ctx. Extra args are logged with the span.
type NewSpan func(ctx context.Context, parent Span, args ...any) (context.Context, Span)

func (Module) NewSpan(
	logger Logger,
) NewSpan {
	return func(ctx context.Context, parent Span, args ...any) (context.Context, Span) {

		var creator Span
		if v := ctx.Value(SpanKey); v != nil {
			creator = v.(Span)
		}
		if parent == "" {
			parent = creator
		}

		span := Span(rand.Text())
		ctx = context.WithValue(ctx, SpanKey, span)

		if creator != "" && creator != parent {
			args = append(args, "creator", creator)
		}
		if parent != "" {
			args = append(args, "parent", parent)
		}
		logger.DebugContext(ctx, "new span", args...)

		return ctx, span
	}
}
