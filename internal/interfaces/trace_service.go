package interfaces

import "context"

// SpanHandle is an open span. Exactly one of End, EndGeneration, or Fail
// closes it; further calls are no-ops. Callers pair every start with a
// deferred close so spans end on every exit path, including failures.
type SpanHandle interface {
	// End closes the span with the given output payload.
	End(output any)

	// EndGeneration closes the span with output plus generation metadata
	// (model name, sampling temperature).
	EndGeneration(output any, model string, temperature float32)

	// Fail closes the span with no output, an error flag, and the cause.
	Fail(err error)
}

// TraceRecorder records hierarchical span trees for observability. It is a
// side-effect-only sink: recorder failures are logged and swallowed, never
// propagated to the caller.
//
// Parentage is carried in the context: a span started from a context that
// holds an open span becomes its child.
type TraceRecorder interface {
	// StartTrace opens a new trace with a root span of the given name.
	StartTrace(ctx context.Context, name string, input any) (context.Context, SpanHandle)

	// StartSpan opens a span nested under the span held by ctx (or a new
	// trace when ctx holds none).
	StartSpan(ctx context.Context, name string, input any) (context.Context, SpanHandle)

	// Flush blocks until buffered spans have been handed to the backend or
	// the context expires. Used on shutdown.
	Flush(ctx context.Context) error

	// Close stops the recorder's background workers.
	Close() error
}
