package badger

import (
	"fmt"
	"os"
	"path/filepath"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsa/internal/common"
	"github.com/timshannon/badgerhold/v4"
)

// BadgerDB manages the Badger database connection
type BadgerDB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
	config *common.BadgerConfig
	gcCron *cron.Cron
}

// NewBadgerDB creates a new Badger database connection
func NewBadgerDB(logger arbor.ILogger, config *common.BadgerConfig) (*BadgerDB, error) {
	// If reset_on_startup is enabled, delete the existing database
	if config.ResetOnStartup {
		if _, err := os.Stat(config.Path); err == nil {
			logger.Debug().Str("path", config.Path).Msg("Deleting existing database (reset_on_startup=true)")
			if err := os.RemoveAll(config.Path); err != nil {
				logger.Warn().Err(err).Str("path", config.Path).Msg("Failed to delete database directory")
			}
		}
	}

	// Ensure the directory exists
	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	logger.Debug().Str("path", config.Path).Msg("Opening Badger database connection")

	options := badgerhold.DefaultOptions
	options.Dir = config.Path
	options.ValueDir = config.Path
	options.Logger = nil // Disable default badger logger to use arbor

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	db := &BadgerDB{
		store:  store,
		logger: logger,
		config: config,
	}

	if config.GCSchedule != "" {
		if err := db.startGC(config.GCSchedule); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to schedule value-log GC: %w", err)
		}
	}

	logger.Debug().Str("path", config.Path).Msg("Badger database initialized")

	return db, nil
}

// startGC schedules periodic Badger value-log garbage collection.
// Badger does not reclaim value-log space on its own; each run rewrites one
// log file at a time until ErrNoRewrite signals nothing is left to reclaim.
func (b *BadgerDB) startGC(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		for {
			if err := b.store.Badger().RunValueLogGC(0.5); err != nil {
				if err != badgerdb.ErrNoRewrite {
					b.logger.Warn().Err(err).Msg("Badger value-log GC failed")
				}
				return
			}
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	b.gcCron = c

	b.logger.Debug().Str("schedule", schedule).Msg("Badger value-log GC scheduled")
	return nil
}

// Store returns the underlying badgerhold store
func (b *BadgerDB) Store() *badgerhold.Store {
	return b.store
}

// Close closes the database connection
func (b *BadgerDB) Close() error {
	if b.gcCron != nil {
		b.gcCron.Stop()
	}
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}
