package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/odds-backtester/internal/config"
)

// Factory creates DataSource implementations based on configuration
type Factory struct {
	logger *logrus.Logger
}

// NewFactory creates a new data source factory
func NewFactory(logger *logrus.Logger) *Factory {
	if logger == nil {
		logger = logrus.New()
	}
	return &Factory{logger: logger}
}

// NewDataSource creates the data source for one configured domain
func (f *Factory) NewDataSource(cfg config.DomainConfig) (DataSource, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("domain id is required")
	}
	if len(cfg.DataFiles) == 0 {
		return nil, fmt.Errorf("domain %s: no data files configured", cfg.ID)
	}

	return NewFootballDataSource(FootballDataOptions{
		Domain:        cfg.ID,
		Files:         cfg.DataFiles,
		Season:        cfg.Season,
		OddsPrefix:    cfg.OddsPrefix,
		BettingPrefix: cfg.BettingPrefix,
		AuxColumns:    cfg.AuxColumns,
	}, f.logger)
}
