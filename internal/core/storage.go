package core

import (
	"context"
	"fmt"

	"bioforge/internal/config"
	"bioforge/internal/infra/persistence/memory"
	"bioforge/internal/infra/persistence/postgres"
	"bioforge/internal/infra/persistence/sqlite"
	"bioforge/pkg/domain"
)

// OpenStateStore selects a state backend from the storage settings.
//
//	memory: process memory only (tests / ephemeral)
//	sqlite: embedded sqlite file at SQLitePath (default ./bioforge.db)
//	postgres: PostgreSQL server at PostgresDSN
func OpenStateStore(ctx context.Context, cfg config.Storage) (domain.StateStore, error) {
	switch cfg.Driver {
	case config.StorageMemory:
		return memory.NewStore(), nil
	case config.StorageSQLite, "":
		store, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoragePostgres:
		store, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
}
