package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/odds-backtester/internal/config"
	"github.com/yourusername/odds-backtester/internal/ml"
)

// BuildRegistry creates the per-domain classifier registry described by the
// classifier config. Domains whose model cannot be loaded are left out and
// logged; validating them later fails with models.ErrModelUnavailable.
func BuildRegistry(cfg *config.Config, logger *logrus.Logger) (*ml.Registry, error) {
	staging := ml.NewRegistry()

	switch cfg.Classifier.Mode {
	case "snapshot":
		if err := ml.LoadSnapshotDir(staging, cfg.Classifier.ModelsDir, cfg.DomainIDs()); err != nil {
			logger.WithError(err).Warn("Some model snapshots could not be loaded")
		}
	case "http":
		for _, d := range cfg.Domains {
			c, err := ml.NewHTTPClassifier(&cfg.Classifier, d.ID, d.ModelVersion, logger)
			if err != nil {
				return nil, fmt.Errorf("domain %s: %w", d.ID, err)
			}
			if err := staging.Register(c); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unknown classifier mode: %s", cfg.Classifier.Mode)
	}

	if cfg.Classifier.CacheTTLSeconds <= 0 {
		return staging, nil
	}

	registry := ml.NewRegistry()
	ttl := time.Duration(cfg.Classifier.CacheTTLSeconds) * time.Second
	for _, domain := range staging.Domains() {
		c, err := staging.Lookup(domain, "")
		if err != nil {
			return nil, err
		}
		if err := registry.Register(ml.NewCachedClassifier(c, ttl, cfg.Classifier.CacheMaxSize, logger)); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
