// Package datasource loads historical matches for backtesting.
package datasource

import (
	"context"

	"github.com/yourusername/odds-backtester/internal/models"
)

// DataSource defines the interface for loading historical matches
type DataSource interface {
	// Load returns every match the source holds, in file order
	Load(ctx context.Context) ([]models.Match, error)

	// Name returns the name of the data source
	Name() string
}
