package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/odds-backtester/internal/backtest"
	"github.com/yourusername/odds-backtester/internal/config"
	"github.com/yourusername/odds-backtester/internal/ml"
	"github.com/yourusername/odds-backtester/internal/models"
	"github.com/yourusername/odds-backtester/internal/repository"
)

func newTestService(t *testing.T, cfg *config.Config, sources SourceFactory, repo *MockVerdictRepository, classifiers ...ml.Classifier) *ValidationService {
	t.Helper()
	registry := ml.NewRegistry()
	for _, c := range classifiers {
		require.NoError(t, registry.Register(c))
	}
	// a nil *MockVerdictRepository must not become a non-nil interface
	var repoIface repository.VerdictRepository
	if repo != nil {
		repoIface = repo
	}
	svc, err := NewValidationService(cfg, registry, sources, repoIface, quietLogger())
	require.NoError(t, err)
	return svc
}

func TestValidateDomainPasses(t *testing.T) {
	repo := new(MockVerdictRepository)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(rec *models.VerdictRecord) bool {
		return rec.Domain == "E0" && rec.Passed && rec.TotalBets == 15 && len(rec.Ledger) > 0
	})).Return(nil).Once()

	cfg := testConfig()
	svc := newTestService(t, cfg, memorySources{"E0": seasonMatches("E0", 30)}, repo, homeFavourite("E0"))

	report, err := svc.ValidateDomain(context.Background(), cfg.Domains[0])
	require.NoError(t, err)

	rec := report.Record
	assert.True(t, rec.Passed)
	assert.Equal(t, "v1", rec.ModelVersion)
	assert.Equal(t, 15, rec.HoldoutSize)
	assert.InDelta(t, 0.2, rec.ROI, 1e-12)
	assert.Equal(t, 1030.0, rec.FinalBankroll)
	assert.NotEmpty(t, rec.ConfigHash)
	assert.Empty(t, report.Error)
	assert.Nil(t, report.WalkForward)
	assert.Nil(t, report.MonteCarlo)
	repo.AssertExpectations(t)
}

func TestValidateDomainConfigHashIsStable(t *testing.T) {
	cfg := testConfig()
	sources := memorySources{"E0": seasonMatches("E0", 30)}

	a, err := newTestService(t, cfg, sources, nil, homeFavourite("E0")).ValidateDomain(context.Background(), cfg.Domains[0])
	require.NoError(t, err)
	b, err := newTestService(t, cfg, sources, nil, homeFavourite("E0")).ValidateDomain(context.Background(), cfg.Domains[0])
	require.NoError(t, err)

	assert.Equal(t, a.Record.ConfigHash, b.Record.ConfigHash)
	assert.JSONEq(t, string(a.Record.Ledger), string(b.Record.Ledger))
	assert.NotEqual(t, a.Record.ID, b.Record.ID)
}

func TestValidateDomainModelUnavailable(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(t, cfg, memorySources{"E0": seasonMatches("E0", 30)}, nil)

	report, err := svc.ValidateDomain(context.Background(), cfg.Domains[0])
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrModelUnavailable))
	assert.Equal(t, "E0", report.Record.Domain)
	assert.NotEmpty(t, report.Error)
	assert.False(t, report.Record.Passed)
}

func TestValidateDomainVersionMismatch(t *testing.T) {
	cfg := testConfig()
	cfg.Domains[0].ModelVersion = "v2"
	svc := newTestService(t, cfg, memorySources{"E0": seasonMatches("E0", 30)}, nil, homeFavourite("E0"))

	_, err := svc.ValidateDomain(context.Background(), cfg.Domains[0])
	assert.True(t, errors.Is(err, models.ErrModelUnavailable))
}

func TestValidateDomainStructuralErrorSkipsPersistence(t *testing.T) {
	matches := seasonMatches("E0", 30)
	matches[20].Odds.Away = -1

	repo := new(MockVerdictRepository)
	cfg := testConfig()
	svc := newTestService(t, cfg, memorySources{"E0": matches}, repo, homeFavourite("E0"))

	report, err := svc.ValidateDomain(context.Background(), cfg.Domains[0])
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidOdds))
	assert.Contains(t, report.Error, "E0-20")
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestValidateDomainAmbiguousSplit(t *testing.T) {
	matches := seasonMatches("E0", 30)
	matches[15].Kickoff = matches[14].Kickoff

	cfg := testConfig()
	svc := newTestService(t, cfg, memorySources{"E0": matches}, nil, homeFavourite("E0"))

	_, err := svc.ValidateDomain(context.Background(), cfg.Domains[0])
	assert.True(t, errors.Is(err, models.ErrAmbiguousOrdering))
}

func TestValidateDomainPersistenceFailure(t *testing.T) {
	repo := new(MockVerdictRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	cfg := testConfig()
	svc := newTestService(t, cfg, memorySources{"E0": seasonMatches("E0", 30)}, repo, homeFavourite("E0"))

	_, err := svc.ValidateDomain(context.Background(), cfg.Domains[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist verdict")
}

func TestValidateDomainWithRobustnessReports(t *testing.T) {
	cfg := testConfig()
	cfg.Backtest.WalkForwardFolds = 3
	cfg.Backtest.MonteCarloIterations = 200
	svc := newTestService(t, cfg, memorySources{"E0": seasonMatches("E0", 24)}, nil, homeFavourite("E0"))

	report, err := svc.ValidateDomain(context.Background(), cfg.Domains[0])
	require.NoError(t, err)
	require.NotNil(t, report.WalkForward)
	assert.Len(t, report.WalkForward.Folds, 3)
	require.NotNil(t, report.MonteCarlo)
	assert.Equal(t, 200, report.MonteCarlo.Iterations)
	assert.Equal(t, int64(42), report.MonteCarlo.Seed)
}

func TestRunIsolatesDomainFailures(t *testing.T) {
	cfg := testConfig()
	cfg.Domains = append(cfg.Domains, config.DomainConfig{ID: "SP1", DataFiles: []string{"SP1.csv"}, OddsPrefix: "B365"})
	cfg.Storage.StatusFile = filepath.Join(t.TempDir(), "out", "status.json")

	sources := memorySources{"E0": seasonMatches("E0", 30), "SP1": seasonMatches("SP1", 30)}
	svc := newTestService(t, cfg, sources, nil, homeFavourite("E0"))

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Reports, 2)
	assert.False(t, result.AllPassed)

	assert.Equal(t, "E0", result.Reports[0].Record.Domain)
	assert.True(t, result.Reports[0].Record.Passed)
	assert.Equal(t, "SP1", result.Reports[1].Record.Domain)
	assert.Contains(t, result.Reports[1].Error, models.ErrModelUnavailable.Error())

	data, err := os.ReadFile(cfg.Storage.StatusFile)
	require.NoError(t, err)
	var status backtest.StatusFile
	require.NoError(t, json.Unmarshal(data, &status))
	assert.False(t, status.AllPassed)
	assert.Len(t, status.Domains, 2)
}

func TestRunSelectedDomains(t *testing.T) {
	cfg := testConfig()
	cfg.Domains = append(cfg.Domains, config.DomainConfig{ID: "SP1", DataFiles: []string{"SP1.csv"}, OddsPrefix: "B365"})
	sources := memorySources{"E0": seasonMatches("E0", 30)}
	svc := newTestService(t, cfg, sources, nil, homeFavourite("E0"))

	result, err := svc.Run(context.Background(), "E0")
	require.NoError(t, err)
	require.Len(t, result.Reports, 1)
	assert.True(t, result.AllPassed)

	_, err = svc.Run(context.Background(), "D1")
	assert.Error(t, err)
}

func TestNewStaker(t *testing.T) {
	flat, err := NewStaker(config.StakingConfig{Strategy: "flat", FlatStake: 10})
	require.NoError(t, err)
	assert.Equal(t, "flat", flat.Name())

	kelly, err := NewStaker(config.StakingConfig{Strategy: "kelly", KellyFraction: 0.5, MaxBankrollFraction: 0.05})
	require.NoError(t, err)
	assert.Equal(t, "kelly", kelly.Name())

	_, err = NewStaker(config.StakingConfig{Strategy: "martingale"})
	assert.Error(t, err)
}

func TestNewValidationServiceRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Backtest.HoldoutFraction = 1.5
	_, err := NewValidationService(cfg, ml.NewRegistry(), memorySources{}, nil, quietLogger())
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Features.AuxDefaults = map[string]float64{"corners": 4}
	_, err = NewValidationService(cfg, ml.NewRegistry(), memorySources{}, nil, quietLogger())
	assert.Error(t, err)
}
