package common

import (
	"github.com/google/uuid"
)

// NewTraceID generates a unique trace ID with the "trace_" prefix
func NewTraceID() string {
	return "trace_" + uuid.New().String()
}

// NewSpanID generates a unique span ID with the "span_" prefix
func NewSpanID() string {
	return "span_" + uuid.New().String()
}

// NewCollectionVersion generates a unique versioned collection name.
// Format: <name>@<uuid>
func NewCollectionVersion(name string) string {
	return name + "@" + uuid.New().String()
}
