package ml

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/odds-backtester/internal/features"
	"github.com/yourusername/odds-backtester/internal/metrics"
	"github.com/yourusername/odds-backtester/internal/models"
)

// CacheKey identifies a prediction by model and exact feature values
type CacheKey struct {
	Domain       string
	ModelVersion string
	FeatureHash  string
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Domain, k.ModelVersion, k.FeatureHash)
}

// HashFeatures fingerprints a feature vector by names and bit-exact values
func HashFeatures(fv features.FeatureVector) string {
	h := sha256.New()
	buf := make([]byte, 8)
	values := fv.Values()
	for i, name := range fv.Names() {
		h.Write([]byte(name))
		binary.LittleEndian.PutUint64(buf, math.Float64bits(values[i]))
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// PredictionCache provides in-memory caching for classifier predictions
type PredictionCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewPredictionCache creates a new prediction cache
func NewPredictionCache(ttl time.Duration, maxSize int) *PredictionCache {
	return &PredictionCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached prediction
func (pc *PredictionCache) Get(key CacheKey) (models.ProbabilityDistribution, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if result, found := pc.cache.Get(key.String()); found {
		if dist, ok := result.(models.ProbabilityDistribution); ok {
			pc.hitCount++
			pc.updateMetrics(key.Domain)
			return dist, true
		}
	}

	pc.missCount++
	pc.updateMetrics(key.Domain)
	return models.ProbabilityDistribution{}, false
}

// Set stores a prediction in cache. New entries are dropped once maxSize
// unexpired entries are held.
func (pc *PredictionCache) Set(key CacheKey, dist models.ProbabilityDistribution) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.maxSize > 0 && pc.cache.ItemCount() >= pc.maxSize {
		pc.cache.DeleteExpired()
		if pc.cache.ItemCount() >= pc.maxSize {
			return
		}
	}

	pc.cache.Set(key.String(), dist, pc.ttl)
}

// Clear flushes the entire cache
func (pc *PredictionCache) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.cache.Flush()
	pc.hitCount = 0
	pc.missCount = 0
}

// Stats returns cache statistics
func (pc *PredictionCache) Stats() (hits, misses uint64, ratio float64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.statsLocked()
}

func (pc *PredictionCache) statsLocked() (hits, misses uint64, ratio float64) {
	hits = pc.hitCount
	misses = pc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (pc *PredictionCache) updateMetrics(domain string) {
	_, _, ratio := pc.statsLocked()
	metrics.UpdateCacheHitRatio(domain, ratio)
}

// ItemCount returns the number of items in cache
func (pc *PredictionCache) ItemCount() int {
	return pc.cache.ItemCount()
}
