package storage

import (
	"fmt"

	"hisab/internal/config"
)

// Open selects and initializes the repository backend named by the
// configuration.
func Open(cfg *config.Config) (Repository, error) {
	switch cfg.DataBackend {
	case "sqlite":
		return NewSQLiteRepository(cfg.SQLiteDBPath)
	case "memory":
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}
