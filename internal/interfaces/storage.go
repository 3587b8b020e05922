package interfaces

import (
	"context"

	"github.com/ternarybob/responsa/internal/models"
)

// ChunkStorage persists embedded chunks grouped by versioned collection,
// plus the pointer to the currently active collection version.
type ChunkStorage interface {
	// PutChunks stores the records under the given collection version.
	PutChunks(ctx context.Context, collection string, records []*models.ChunkRecord) error

	// GetChunks returns all records of a collection version in insertion
	// (ordinal) order.
	GetChunks(ctx context.Context, collection string) ([]*models.ChunkRecord, error)

	// DeleteCollection removes every record of a collection version.
	DeleteCollection(ctx context.Context, collection string) error

	// CountChunks returns the number of records in a collection version.
	CountChunks(ctx context.Context, collection string) (int, error)

	// ActiveCollection returns the persisted active collection version, or
	// "" when none has been set.
	ActiveCollection(ctx context.Context) (string, error)

	// SetActiveCollection persists the active collection version pointer.
	SetActiveCollection(ctx context.Context, collection string) error
}

// StorageManager owns the database connection and exposes typed storages
type StorageManager interface {
	ChunkStorage() ChunkStorage

	// DB returns the underlying database handle
	DB() interface{}

	// Close closes the database connection
	Close() error
}
