package ml

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/odds-backtester/internal/features"
	"github.com/yourusername/odds-backtester/internal/metrics"
	"github.com/yourusername/odds-backtester/internal/models"
)

// Snapshot is a trained multinomial logistic model exported to YAML.
type Snapshot struct {
	Domain   string               `yaml:"domain"`
	Version  string               `yaml:"version"`
	Features []string             `yaml:"features"`
	Weights  map[string][]float64 `yaml:"weights"`
	Bias     map[string]float64   `yaml:"bias"`
}

var snapshotClasses = []models.Outcome{models.OutcomeHome, models.OutcomeDraw, models.OutcomeAway}

// Validate checks the snapshot is internally consistent
func (s *Snapshot) Validate() error {
	if s.Domain == "" {
		return fmt.Errorf("snapshot domain is required")
	}
	if s.Version == "" {
		return fmt.Errorf("snapshot version is required")
	}
	if len(s.Features) == 0 {
		return fmt.Errorf("snapshot has no features")
	}
	for _, class := range snapshotClasses {
		w, ok := s.Weights[string(class)]
		if !ok {
			return fmt.Errorf("snapshot missing weights for %s", class)
		}
		if len(w) != len(s.Features) {
			return fmt.Errorf("snapshot %s weights have %d entries, want %d", class, len(w), len(s.Features))
		}
	}
	return nil
}

// SnapshotClassifier scores feature vectors with a loaded Snapshot.
type SnapshotClassifier struct {
	snapshot Snapshot
}

// NewSnapshotClassifier wraps a validated snapshot
func NewSnapshotClassifier(s Snapshot) (*SnapshotClassifier, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrModelUnavailable, err)
	}
	return &SnapshotClassifier{snapshot: s}, nil
}

// LoadSnapshot reads a snapshot file
func LoadSnapshot(path string) (*SnapshotClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrModelUnavailable, err)
	}
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", models.ErrModelUnavailable, path, err)
	}
	return NewSnapshotClassifier(s)
}

// LoadSnapshotDir loads <dir>/<domain>.yaml for every requested domain and
// registers it. A snapshot whose declared domain differs from its file name
// is refused. Domains that fail are left unregistered and their errors joined,
// so the remaining domains stay usable.
func LoadSnapshotDir(registry *Registry, dir string, domains []string) error {
	var errs []error
	for _, domain := range domains {
		if err := loadDomainSnapshot(registry, dir, domain); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func loadDomainSnapshot(registry *Registry, dir, domain string) error {
	path := filepath.Join(dir, domain+".yaml")
	c, err := LoadSnapshot(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: no snapshot for domain %q in %s", models.ErrModelUnavailable, domain, dir)
		}
		return err
	}
	if c.Domain() != domain {
		return fmt.Errorf("%w: %s declares domain %q", models.ErrModelUnavailable, path, c.Domain())
	}
	return registry.Register(c)
}

// Domain returns the domain the snapshot was trained on
func (c *SnapshotClassifier) Domain() string { return c.snapshot.Domain }

// Version returns the snapshot version
func (c *SnapshotClassifier) Version() string { return c.snapshot.Version }

// Predict returns softmax probabilities over home/draw/away
func (c *SnapshotClassifier) Predict(_ context.Context, fv features.FeatureVector) (models.ProbabilityDistribution, error) {
	names := fv.Names()
	if len(names) != len(c.snapshot.Features) {
		return models.ProbabilityDistribution{}, fmt.Errorf("%w: vector has %d features, snapshot %s expects %d",
			models.ErrModelUnavailable, len(names), c.snapshot.Version, len(c.snapshot.Features))
	}
	for i, name := range names {
		if c.snapshot.Features[i] != name {
			return models.ProbabilityDistribution{}, fmt.Errorf("%w: feature %d is %q, snapshot expects %q",
				models.ErrModelUnavailable, i, name, c.snapshot.Features[i])
		}
	}

	values := fv.Values()
	logits := make([]float64, len(snapshotClasses))
	maxLogit := math.Inf(-1)
	for k, class := range snapshotClasses {
		z := c.snapshot.Bias[string(class)]
		for i, w := range c.snapshot.Weights[string(class)] {
			z += w * values[i]
		}
		logits[k] = z
		if z > maxLogit {
			maxLogit = z
		}
	}

	sum := 0.0
	for k := range logits {
		logits[k] = math.Exp(logits[k] - maxLogit)
		sum += logits[k]
	}

	dist := models.ProbabilityDistribution{
		Home: logits[0] / sum,
		Draw: logits[1] / sum,
		Away: logits[2] / sum,
	}
	if err := dist.Validate(); err != nil {
		return models.ProbabilityDistribution{}, err
	}
	metrics.RecordPrediction(c.snapshot.Domain, false)
	return dist, nil
}
