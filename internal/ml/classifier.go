package ml

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yourusername/odds-backtester/internal/features"
	"github.com/yourusername/odds-backtester/internal/models"
)

// Classifier predicts the full-time outcome distribution of a match.
// Implementations must be deterministic for a fixed model snapshot.
type Classifier interface {
	Predict(ctx context.Context, fv features.FeatureVector) (models.ProbabilityDistribution, error)
	Domain() string
	Version() string
}

// Registry maps domain identifiers to their trained classifier.
// There is no default entry; an unknown domain is an error.
type Registry struct {
	mu          sync.RWMutex
	classifiers map[string]Classifier
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{classifiers: make(map[string]Classifier)}
}

// Register binds a classifier to the domain it was trained on
func (r *Registry) Register(c Classifier) error {
	if c == nil {
		return fmt.Errorf("classifier is required")
	}
	domain := c.Domain()
	if domain == "" {
		return fmt.Errorf("classifier has no domain")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.classifiers[domain]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateDomain, domain)
	}
	r.classifiers[domain] = c
	return nil
}

// Lookup returns the classifier for a domain. A non-empty expectedVersion must
// match the registered snapshot exactly.
func (r *Registry) Lookup(domain, expectedVersion string) (Classifier, error) {
	r.mu.RLock()
	c, ok := r.classifiers[domain]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: no classifier for domain %q", models.ErrModelUnavailable, domain)
	}
	if expectedVersion != "" && c.Version() != expectedVersion {
		return nil, fmt.Errorf("%w: domain %q has version %q, expected %q",
			models.ErrModelUnavailable, domain, c.Version(), expectedVersion)
	}
	return c, nil
}

// Domains lists registered domains in sorted order
func (r *Registry) Domains() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.classifiers))
	for d := range r.classifiers {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
