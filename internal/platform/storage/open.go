package storage

import (
	"context"
	"fmt"

	"hrunity/internal/platform/config"
)

// Open builds the adapter selected by STORAGE_DRIVER, sealing values with
// cipher when it is configured.
func Open(ctx context.Context, cfg config.Config, cipher Cipher) (Adapter, error) {
	var (
		adapter Adapter
		err     error
	)
	switch cfg.StorageDriver {
	case config.StorageMemory:
		adapter = NewMemory()
	case config.StorageSQLite:
		adapter, err = OpenSQLite(cfg.SQLitePath)
	case config.StoragePostgres:
		adapter, err = OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.StorageDriver, err)
	}
	return NewEncrypted(adapter, cipher), nil
}
