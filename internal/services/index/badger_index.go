package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsa/internal/common"
	"github.com/ternarybob/responsa/internal/interfaces"
	"github.com/ternarybob/responsa/internal/models"
)

// BadgerVectorIndex serves nearest-neighbor retrieval over chunk records
// in Badger. Similarity is exact cosine over every record of the active
// collection, which is appropriate for the corpus sizes a single upload
// produces.
//
// Replacement is build-then-swap: each upload writes a fresh collection
// version, and the active pointer moves only after the version is fully
// populated. Queries racing a replacement see either the complete old
// collection or the complete new one.
type BadgerVectorIndex struct {
	storage interfaces.ChunkStorage
	logger  arbor.ILogger

	mu     sync.RWMutex
	active string
}

// Compile-time interface assertion
var _ interfaces.VectorIndex = (*BadgerVectorIndex)(nil)

// NewBadgerVectorIndex creates a vector index over the given chunk storage,
// restoring the persisted active collection pointer so indexed content
// survives restarts.
func NewBadgerVectorIndex(storage interfaces.ChunkStorage, logger arbor.ILogger) (*BadgerVectorIndex, error) {
	active, err := storage.ActiveCollection(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to restore active collection: %w", err)
	}

	idx := &BadgerVectorIndex{
		storage: storage,
		logger:  logger,
		active:  active,
	}

	if active != "" {
		logger.Info().Str("collection", active).Msg("Restored active collection")
	}

	return idx, nil
}

// ReplaceCollection stores the chunks under a fresh collection version,
// then swaps the active pointer and removes the previous version. A
// failure before the swap leaves the previous collection serving queries.
func (idx *BadgerVectorIndex) ReplaceCollection(ctx context.Context, name string, chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}

	version := common.NewCollectionVersion(name)

	records := make([]*models.ChunkRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = &models.ChunkRecord{
			Ordinal:   chunk.Ordinal,
			Page:      chunk.Page,
			Text:      chunk.Text,
			Embedding: vectors[i],
		}
	}

	if err := idx.storage.PutChunks(ctx, version, records); err != nil {
		// Best-effort cleanup of the partially written version
		if cleanupErr := idx.storage.DeleteCollection(ctx, version); cleanupErr != nil {
			idx.logger.Warn().Err(cleanupErr).Str("collection", version).Msg("Failed to clean up partial collection")
		}
		return fmt.Errorf("failed to populate collection %s: %w", version, err)
	}

	if err := idx.storage.SetActiveCollection(ctx, version); err != nil {
		if cleanupErr := idx.storage.DeleteCollection(ctx, version); cleanupErr != nil {
			idx.logger.Warn().Err(cleanupErr).Str("collection", version).Msg("Failed to clean up unswapped collection")
		}
		return fmt.Errorf("failed to activate collection %s: %w", version, err)
	}

	idx.mu.Lock()
	previous := idx.active
	idx.active = version
	idx.mu.Unlock()

	if previous != "" && previous != version {
		if err := idx.storage.DeleteCollection(ctx, previous); err != nil {
			idx.logger.Warn().Err(err).Str("collection", previous).Msg("Failed to delete replaced collection")
		}
	}

	idx.logger.Info().
		Str("collection", version).
		Int("chunks", len(chunks)).
		Msg("Collection replaced")

	return nil
}

// Retrieve scores every record of the active collection against the query
// vector and returns the top k by descending similarity. Records arrive
// from storage in ordinal order, so the stable sort breaks score ties by
// insertion order.
func (idx *BadgerVectorIndex) Retrieve(ctx context.Context, vector []float32, k int) ([]models.RetrievedChunk, error) {
	if k <= 0 {
		return []models.RetrievedChunk{}, nil
	}

	idx.mu.RLock()
	active := idx.active
	idx.mu.RUnlock()

	if active == "" {
		return []models.RetrievedChunk{}, nil
	}

	records, err := idx.storage.GetChunks(ctx, active)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", active, err)
	}

	scored := make([]models.RetrievedChunk, 0, len(records))
	for _, record := range records {
		scored = append(scored, models.RetrievedChunk{
			Chunk: record.ToChunk(),
			Score: cosineSimilarity(vector, record.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}

	return scored, nil
}

// Count returns the number of chunks in the active collection.
func (idx *BadgerVectorIndex) Count(ctx context.Context) (int, error) {
	idx.mu.RLock()
	active := idx.active
	idx.mu.RUnlock()

	if active == "" {
		return 0, nil
	}

	return idx.storage.CountChunks(ctx, active)
}
