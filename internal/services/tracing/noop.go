package tracing

import (
	"context"

	"github.com/ternarybob/responsa/internal/interfaces"
)

// NoopRecorder discards all spans. Used when tracing is disabled or
// credentials are missing, so callers never branch on tracing state.
type NoopRecorder struct{}

// Compile-time interface assertions
var (
	_ interfaces.TraceRecorder = (*NoopRecorder)(nil)
	_ interfaces.SpanHandle    = noopSpan{}
)

// NewNoopRecorder creates a recorder that records nothing.
func NewNoopRecorder() *NoopRecorder {
	return &NoopRecorder{}
}

func (r *NoopRecorder) StartTrace(ctx context.Context, name string, input any) (context.Context, interfaces.SpanHandle) {
	return ctx, noopSpan{}
}

func (r *NoopRecorder) StartSpan(ctx context.Context, name string, input any) (context.Context, interfaces.SpanHandle) {
	return ctx, noopSpan{}
}

func (r *NoopRecorder) Flush(ctx context.Context) error {
	return nil
}

func (r *NoopRecorder) Close() error {
	return nil
}

type noopSpan struct{}

func (noopSpan) End(output any)                                             {}
func (noopSpan) EndGeneration(output any, model string, temperature float32) {}
func (noopSpan) Fail(err error)                                             {}
