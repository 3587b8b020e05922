package tracing

import "context"

type spanContextKey struct{}

// spanContext identifies the open span a context is executing under.
// Child spans read it to establish parentage.
type spanContext struct {
	TraceID string
	SpanID  string
}

func withSpan(ctx context.Context, traceID, spanID string) context.Context {
	return context.WithValue(ctx, spanContextKey{}, spanContext{TraceID: traceID, SpanID: spanID})
}

func spanFromContext(ctx context.Context) (spanContext, bool) {
	sc, ok := ctx.Value(spanContextKey{}).(spanContext)
	return sc, ok
}
