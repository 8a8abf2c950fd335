package repository

import (
	"fmt"

	"github.com/jengzang/maritime-metrics-go/internal/config"
	"github.com/jengzang/maritime-metrics-go/internal/database"
	"github.com/jengzang/maritime-metrics-go/pkg/logger"
)

// Stores bundles the repositories sharing one connection
type Stores struct {
	Waypoints WaypointStore
	Batches   ImportBatchLog

	close func() error
}

// Close releases the underlying connection
func (s *Stores) Close() error {
	return s.close()
}

// Open opens and migrates the stores selected by cfg.StoreDriver
func Open(cfg *config.Config, log logger.Logger) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		store, err := OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		log.Info("Using PostgreSQL store")
		return &Stores{
			Waypoints: store,
			Batches:   NewGormImportBatchRepository(store.db),
			close:     store.Close,
		}, nil

	case config.DriverSQLite, "":
		db, err := database.Open(database.Config{Path: cfg.DBPath})
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db, log); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("Using SQLite store", "path", cfg.DBPath)
		return &Stores{
			Waypoints: NewSQLiteWaypointStore(db),
			Batches:   NewSQLiteImportBatchRepository(db),
			close:     db.Close,
		}, nil
	}

	return nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
}
