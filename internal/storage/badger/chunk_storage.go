package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsa/internal/interfaces"
	"github.com/ternarybob/responsa/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// activePointerKey is the fixed key of the persisted active-collection
// pointer record.
const activePointerKey = "active_collection"

// collectionPointer persists which collection version serves queries.
type collectionPointer struct {
	Name      string
	UpdatedAt time.Time
}

// ChunkStorage implements the ChunkStorage interface for Badger
type ChunkStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewChunkStorage creates a new ChunkStorage instance
func NewChunkStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ChunkStorage {
	return &ChunkStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ChunkStorage) PutChunks(ctx context.Context, collection string, records []*models.ChunkRecord) error {
	if collection == "" {
		return fmt.Errorf("collection name is required")
	}

	now := time.Now()
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		record.Collection = collection
		if record.Key == "" {
			record.Key = fmt.Sprintf("%s/%d", collection, record.Ordinal)
		}
		record.CreatedAt = now

		if err := s.db.Store().Upsert(record.Key, record); err != nil {
			return fmt.Errorf("failed to store chunk %s: %w", record.Key, err)
		}
	}

	return nil
}

func (s *ChunkStorage) GetChunks(ctx context.Context, collection string) ([]*models.ChunkRecord, error) {
	var records []models.ChunkRecord
	query := badgerhold.Where("Collection").Eq(collection).SortBy("Ordinal")
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to load chunks for collection %s: %w", collection, err)
	}

	result := make([]*models.ChunkRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}

func (s *ChunkStorage) DeleteCollection(ctx context.Context, collection string) error {
	if err := s.db.Store().DeleteMatching(&models.ChunkRecord{}, badgerhold.Where("Collection").Eq(collection)); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", collection, err)
	}
	return nil
}

func (s *ChunkStorage) CountChunks(ctx context.Context, collection string) (int, error) {
	count, err := s.db.Store().Count(&models.ChunkRecord{}, badgerhold.Where("Collection").Eq(collection))
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks for collection %s: %w", collection, err)
	}
	return int(count), nil
}

func (s *ChunkStorage) ActiveCollection(ctx context.Context) (string, error) {
	var pointer collectionPointer
	if err := s.db.Store().Get(activePointerKey, &pointer); err != nil {
		if err == badgerhold.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to read active collection pointer: %w", err)
	}
	return pointer.Name, nil
}

func (s *ChunkStorage) SetActiveCollection(ctx context.Context, collection string) error {
	pointer := collectionPointer{
		Name:      collection,
		UpdatedAt: time.Now(),
	}
	if err := s.db.Store().Upsert(activePointerKey, &pointer); err != nil {
		return fmt.Errorf("failed to update active collection pointer: %w", err)
	}
	return nil
}
