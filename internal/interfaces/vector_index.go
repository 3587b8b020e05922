package interfaces

import (
	"context"

	"github.com/ternarybob/responsa/internal/models"
)

// VectorIndex stores (vector, chunk) pairs in a named collection and serves
// nearest-neighbor retrieval over the active collection.
//
// ReplaceCollection is build-then-swap: the new collection is fully
// populated under a fresh version before the active pointer moves, so
// concurrent queries always observe fully-old or fully-new state and a
// failed replacement leaves the previous collection intact.
type VectorIndex interface {
	// ReplaceCollection atomically replaces the active collection with the
	// given chunks and their vectors. len(chunks) must equal len(vectors).
	ReplaceCollection(ctx context.Context, name string, chunks []models.Chunk, vectors [][]float32) error

	// Retrieve returns up to k chunks ordered by descending cosine
	// similarity to the query vector, ties broken by insertion order.
	// An empty or absent collection yields an empty slice, not an error.
	Retrieve(ctx context.Context, vector []float32, k int) ([]models.RetrievedChunk, error)

	// Count returns the number of chunks in the active collection.
	Count(ctx context.Context) (int, error)
}
