package storage

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsa/internal/common"
	"github.com/ternarybob/responsa/internal/interfaces"
	"github.com/ternarybob/responsa/internal/storage/badger"
)

// NewStorageManager creates the storage manager for the configured backend.
// Badger is the only backend today; the factory keeps the call site stable
// if another one is added.
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	return badger.NewManager(logger, &config.Storage.Badger)
}
