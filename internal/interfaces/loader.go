package interfaces

import (
	"context"

	"github.com/ternarybob/responsa/internal/models"
)

// DocumentLoader turns a file on disk into an ordered sequence of text
// segments with positional metadata. Implementations are selected by
// document type; PDF loaders yield one segment per page, generic loaders
// yield segments with page 0.
type DocumentLoader interface {
	// Load reads the file at path and returns its segments in source order.
	Load(ctx context.Context, path string) ([]models.Segment, error)

	// Type returns the document type this loader handles.
	Type() models.DocumentType
}

// Chunker splits segments into bounded-length overlapping chunks,
// preserving each segment's page metadata.
type Chunker interface {
	Split(segment models.Segment) []models.Chunk
}
