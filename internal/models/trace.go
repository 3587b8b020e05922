package models

import "time"

// ObservationType distinguishes plain spans from LLM generation spans in the
// trace tree. Generation spans carry model metadata.
type ObservationType string

const (
	ObservationSpan       ObservationType = "SPAN"
	ObservationGeneration ObservationType = "GENERATION"
)

// Span is one recorded unit of work inside a request trace. Spans nest via
// ParentID; the root span of a request has an empty ParentID and shares its
// ID with the trace. A span is never mutated after it is closed.
type Span struct {
	ID        string
	TraceID   string
	ParentID  string
	Name      string
	Type      ObservationType
	Input     any
	Output    any
	StartTime time.Time
	EndTime   time.Time

	// Error is set when the wrapped unit of work failed; Output is omitted
	// in that case and StatusMessage carries the cause.
	Error         bool
	StatusMessage string

	// Metadata holds static span attributes (e.g. model name, temperature
	// for generation spans).
	Metadata map[string]any
}

// Closed reports whether the span has been ended.
func (s *Span) Closed() bool {
	return !s.EndTime.IsZero()
}
