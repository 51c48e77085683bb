package ml

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/odds-backtester/internal/features"
	"github.com/yourusername/odds-backtester/internal/metrics"
	"github.com/yourusername/odds-backtester/internal/models"
)

// CachedClassifier wraps a Classifier with prediction caching
type CachedClassifier struct {
	inner  Classifier
	cache  *PredictionCache
	logger *logrus.Logger
}

// NewCachedClassifier creates a caching wrapper around a classifier
func NewCachedClassifier(inner Classifier, ttl time.Duration, maxSize int, logger *logrus.Logger) *CachedClassifier {
	if logger == nil {
		logger = logrus.New()
	}
	return &CachedClassifier{
		inner:  inner,
		cache:  NewPredictionCache(ttl, maxSize),
		logger: logger,
	}
}

// Domain returns the wrapped classifier's domain
func (c *CachedClassifier) Domain() string { return c.inner.Domain() }

// Version returns the wrapped classifier's version
func (c *CachedClassifier) Version() string { return c.inner.Version() }

// Cache exposes the underlying prediction cache
func (c *CachedClassifier) Cache() *PredictionCache { return c.cache }

// Predict returns a cached distribution when the exact vector was scored before
func (c *CachedClassifier) Predict(ctx context.Context, fv features.FeatureVector) (models.ProbabilityDistribution, error) {
	key := CacheKey{
		Domain:       c.inner.Domain(),
		ModelVersion: c.inner.Version(),
		FeatureHash:  HashFeatures(fv),
	}

	if dist, ok := c.cache.Get(key); ok {
		c.logger.WithField("cache_key", key.String()).Debug("Cache hit for prediction")
		metrics.RecordPrediction(key.Domain, true)
		return dist, nil
	}

	dist, err := c.inner.Predict(ctx, fv)
	if err != nil {
		return models.ProbabilityDistribution{}, err
	}

	c.cache.Set(key, dist)
	return dist, nil
}
