package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/odds-backtester/internal/config"
	"github.com/yourusername/odds-backtester/internal/datasource"
	"github.com/yourusername/odds-backtester/internal/features"
	"github.com/yourusername/odds-backtester/internal/models"
)

// MockVerdictRepository mocks the verdict repository
type MockVerdictRepository struct {
	mock.Mock
}

func (m *MockVerdictRepository) Save(ctx context.Context, rec *models.VerdictRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockVerdictRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.VerdictRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VerdictRecord), args.Error(1)
}

func (m *MockVerdictRepository) GetLatest(ctx context.Context, domain string) (*models.VerdictRecord, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VerdictRecord), args.Error(1)
}

func (m *MockVerdictRepository) List(ctx context.Context, domain string, limit int) ([]*models.VerdictRecord, error) {
	args := m.Called(ctx, domain, limit)
	return args.Get(0).([]*models.VerdictRecord), args.Error(1)
}

func (m *MockVerdictRepository) Close() error {
	return m.Called().Error(0)
}

type fixedClassifier struct {
	domain  string
	version string
	dist    models.ProbabilityDistribution
}

func (c *fixedClassifier) Domain() string  { return c.domain }
func (c *fixedClassifier) Version() string { return c.version }

func (c *fixedClassifier) Predict(_ context.Context, _ features.FeatureVector) (models.ProbabilityDistribution, error) {
	return c.dist, nil
}

type memorySource struct {
	name    string
	matches []models.Match
}

func (s *memorySource) Name() string { return s.name }

func (s *memorySource) Load(_ context.Context) ([]models.Match, error) {
	return s.matches, nil
}

type memorySources map[string][]models.Match

func (m memorySources) NewDataSource(cfg config.DomainConfig) (datasource.DataSource, error) {
	matches, ok := m[cfg.ID]
	if !ok {
		return nil, fmt.Errorf("no data for %s", cfg.ID)
	}
	return &memorySource{name: cfg.ID, matches: matches}, nil
}

// seasonMatches builds n daily fixtures; every third one is an away win
func seasonMatches(domain string, n int) []models.Match {
	kickoff := time.Date(2023, 8, 11, 19, 0, 0, 0, time.UTC)
	matches := make([]models.Match, n)
	for i := 0; i < n; i++ {
		outcome := models.OutcomeHome
		if i%3 == 2 {
			outcome = models.OutcomeAway
		}
		matches[i] = models.Match{
			ID:          fmt.Sprintf("%s-%02d", domain, i),
			Domain:      domain,
			Season:      "2023-24",
			Kickoff:     kickoff.Add(time.Duration(i) * 24 * time.Hour),
			HomeTeam:    fmt.Sprintf("Home %d", i),
			AwayTeam:    fmt.Sprintf("Away %d", i),
			Odds:        models.OddsTriple{Home: 1.8, Draw: 3.5, Away: 4.2},
			TrueOutcome: outcome,
		}
	}
	return matches
}

func homeFavourite(domain string) *fixedClassifier {
	return &fixedClassifier{
		domain:  domain,
		version: "v1",
		dist:    models.ProbabilityDistribution{Home: 0.62, Draw: 0.20, Away: 0.18},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "odds-backtester", Environment: "development", LogLevel: "info"},
		Policy: config.PolicyConfig{
			ConfidenceThreshold: 0.6,
			MinOdds:             1.5,
		},
		Staking: config.StakingConfig{
			Strategy:            "flat",
			FlatStake:           10,
			KellyFraction:       0.5,
			MaxBankrollFraction: 0.05,
		},
		Backtest: config.BacktestConfig{
			HoldoutFraction:  0.5,
			StartingBankroll: 1000,
			MonteCarloSeed:   42,
		},
		Validation: config.ValidationConfig{MinROI: 0, MinHitRate: 0.55, MinBets: 5},
		Classifier: config.ClassifierConfig{Mode: "snapshot", ModelsDir: "models", TimeoutSeconds: 10},
		Domains: []config.DomainConfig{
			{ID: "E0", DataFiles: []string{"E0.csv"}, OddsPrefix: "B365", ModelVersion: "v1"},
		},
		Storage: config.StorageConfig{Driver: "none"},
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}
