// Package repository persists validation verdicts.
package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/odds-backtester/internal/config"
	"github.com/yourusername/odds-backtester/internal/database"
)

// NewVerdictRepository opens the verdict store selected by storage.driver.
// Driver "none" returns a nil repository and no error.
func NewVerdictRepository(ctx context.Context, cfg *config.Config) (VerdictRepository, error) {
	switch cfg.Storage.Driver {
	case "", "none":
		return nil, nil
	case "sqlite":
		db, err := database.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return NewSQLiteVerdictRepository(db), nil
	case "postgres":
		db, err := database.Initialize(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		return NewPostgresVerdictRepository(db.GetPool(), db.Close), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

const defaultListLimit = 50

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}
