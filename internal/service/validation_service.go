// Package service orchestrates validation runs across domains.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/odds-backtester/internal/backtest"
	"github.com/yourusername/odds-backtester/internal/config"
	"github.com/yourusername/odds-backtester/internal/datasource"
	"github.com/yourusername/odds-backtester/internal/features"
	"github.com/yourusername/odds-backtester/internal/logger"
	"github.com/yourusername/odds-backtester/internal/metrics"
	"github.com/yourusername/odds-backtester/internal/ml"
	"github.com/yourusername/odds-backtester/internal/models"
	"github.com/yourusername/odds-backtester/internal/repository"
	"github.com/yourusername/odds-backtester/internal/strategy"
)

// Run status labels used in metrics
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
	StatusError  = "error"
)

// SourceFactory builds the data source for a domain
type SourceFactory interface {
	NewDataSource(cfg config.DomainConfig) (datasource.DataSource, error)
}

// RunResult collects the per-domain reports of one validation run
type RunResult struct {
	Reports   []backtest.Report
	AllPassed bool
}

// ValidationService validates each configured domain's model on its holdout
type ValidationService struct {
	cfg        *config.Config
	backtest   backtest.BacktestConfig
	normalizer *features.Normalizer
	policy     *strategy.Policy
	registry   *ml.Registry
	sources    SourceFactory
	repo       repository.VerdictRepository
	logger     *logrus.Logger
	now        func() time.Time
}

// NewValidationService creates a new validation service. repo may be nil.
func NewValidationService(
	cfg *config.Config,
	registry *ml.Registry,
	sources SourceFactory,
	repo repository.VerdictRepository,
	logger *logrus.Logger,
) (*ValidationService, error) {
	if cfg == nil || registry == nil || sources == nil {
		return nil, fmt.Errorf("config, registry and data sources are required")
	}
	if logger == nil {
		logger = logrus.New()
	}

	btCfg, err := backtest.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	normalizer, err := features.NewNormalizer(cfg.Features.AuxDefaults)
	if err != nil {
		return nil, fmt.Errorf("invalid feature config: %w", err)
	}
	staker, err := NewStaker(cfg.Staking)
	if err != nil {
		return nil, err
	}
	policy, err := strategy.NewPolicy(strategy.PolicyConfig{
		ConfidenceThreshold: cfg.Policy.ConfidenceThreshold,
		MinOdds:             cfg.Policy.MinOdds,
	}, staker)
	if err != nil {
		return nil, fmt.Errorf("invalid policy config: %w", err)
	}

	return &ValidationService{
		cfg:        cfg,
		backtest:   btCfg,
		normalizer: normalizer,
		policy:     policy,
		registry:   registry,
		sources:    sources,
		repo:       repo,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// NewStaker builds the configured staker
func NewStaker(cfg config.StakingConfig) (strategy.Staker, error) {
	switch cfg.Strategy {
	case "flat":
		return strategy.NewFlatStaker(cfg.FlatStake)
	case "kelly":
		return strategy.NewKellyStaker(cfg.KellyFraction, cfg.MaxBankrollFraction)
	default:
		return nil, fmt.Errorf("unknown staking strategy: %s", cfg.Strategy)
	}
}

// Run validates every configured domain (or only the given ones) in
// parallel. Domains share no state; one domain failing never stops another.
func (s *ValidationService) Run(ctx context.Context, only ...string) (*RunResult, error) {
	domains, err := s.selectDomains(only)
	if err != nil {
		return nil, err
	}

	reports := make([]backtest.Report, len(domains))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range domains {
		i, d := i, d
		g.Go(func() error {
			report, err := s.ValidateDomain(gctx, d)
			if err != nil && errors.Is(err, context.Canceled) {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &RunResult{Reports: reports, AllPassed: len(reports) > 0}
	for _, r := range reports {
		if r.Error != "" || !r.Record.Passed {
			result.AllPassed = false
		}
	}

	if path := s.cfg.Storage.StatusFile; path != "" {
		status := backtest.StatusFile{
			GeneratedAt: s.now().UTC().Format(time.RFC3339),
			AllPassed:   result.AllPassed,
			Domains:     reports,
		}
		if err := backtest.WriteStatusFile(path, status); err != nil {
			return result, fmt.Errorf("failed to write status file: %w", err)
		}
		s.logger.WithField("path", path).Info("Status file written")
	}

	return result, nil
}

// ValidateDomain runs the full holdout validation for one domain. On error
// the returned report carries the error text and no verdict.
func (s *ValidationService) ValidateDomain(ctx context.Context, d config.DomainConfig) (backtest.Report, error) {
	start := s.now()
	blog := logger.NewBacktestLogger(s.logger, d.ID)

	report, err := s.validate(ctx, d, blog)
	duration := s.now().Sub(start).Seconds()
	if err != nil {
		if errors.Is(err, models.ErrModelUnavailable) {
			blog.LogModelUnavailable(err)
		} else {
			blog.WithError(err).Error("Domain validation aborted")
		}
		metrics.RecordValidationRun(d.ID, StatusError, duration)
		report.Record.Domain = d.ID
		report.Record.ModelVersion = d.ModelVersion
		report.Record.RunAt = start.UTC()
		report.Error = err.Error()
		return report, err
	}

	status := StatusFailed
	if report.Record.Passed {
		status = StatusPassed
	}
	metrics.RecordValidationRun(d.ID, status, duration)
	metrics.UpdateVerdict(d.ID, report.Record.ROI, report.Record.HitRate)
	return report, nil
}

func (s *ValidationService) validate(ctx context.Context, d config.DomainConfig, blog *logger.BacktestLogger) (backtest.Report, error) {
	src, err := s.sources.NewDataSource(d)
	if err != nil {
		return backtest.Report{}, err
	}
	matches, err := src.Load(ctx)
	if err != nil {
		return backtest.Report{}, err
	}

	training, holdout, err := backtest.ChronologicalSplit(matches, s.backtest.HoldoutFraction)
	if err != nil {
		return backtest.Report{}, err
	}
	blog.LogSplit(len(matches), len(training), len(holdout), s.backtest.HoldoutFraction)

	classifier, err := s.registry.Lookup(d.ID, d.ModelVersion)
	if err != nil {
		return backtest.Report{}, err
	}

	sim, err := backtest.NewSimulator(s.normalizer, classifier, s.policy, s.logger)
	if err != nil {
		return backtest.Report{}, err
	}
	result, err := sim.Run(ctx, holdout, s.backtest.StartingBankroll)
	if err != nil {
		return backtest.Report{}, err
	}
	for _, w := range result.Warnings {
		blog.LogSkippedMatch(w.MatchID, w.Reason)
	}
	blog.LogSimulation(result.Considered, result.Bets(), len(result.Warnings), result.StartingBankroll, result.FinalBankroll)

	verdict := backtest.Evaluate(result.Ledger, s.backtest.Thresholds)
	blog.LogVerdict(verdict.Passed, verdict.ROI, verdict.HitRate, verdict.TotalBets, verdict.Reasons)

	ledger, err := result.LedgerJSON()
	if err != nil {
		return backtest.Report{}, fmt.Errorf("failed to encode ledger: %w", err)
	}

	record := models.VerdictRecord{
		ID:               uuid.New(),
		Domain:           d.ID,
		ModelVersion:     classifier.Version(),
		RunAt:            s.now().UTC(),
		HoldoutSize:      len(holdout),
		StartingBankroll: result.StartingBankroll,
		FinalBankroll:    result.FinalBankroll,
		ConfigHash:       s.configHash(d),
		Passed:           verdict.Passed,
		ROI:              verdict.ROI,
		HitRate:          verdict.HitRate,
		TotalBets:        verdict.TotalBets,
		Reasons:          verdict.Reasons,
		Ledger:           ledger,
	}

	report := backtest.Report{
		Record:   record,
		Summary:  backtest.SummarizeLedger(result.Ledger, result.EquityCurve),
		Warnings: result.Warnings,
	}

	if s.backtest.WalkForwardFolds >= 2 {
		wf, err := backtest.RunWalkForward(ctx, sim, matches, s.backtest)
		if err != nil {
			blog.WithError(err).Warn("Walk-forward analysis skipped")
		} else {
			report.WalkForward = &wf
		}
	}

	if s.backtest.MonteCarloIterations > 0 {
		mc := backtest.RunMonteCarlo(result.Ledger, backtest.MonteCarloConfig{
			Iterations:      s.backtest.MonteCarloIterations,
			Seed:            s.backtest.MonteCarloSeed,
			InitialBankroll: s.backtest.StartingBankroll,
		})
		report.MonteCarlo = &mc
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, &report.Record); err != nil {
			return backtest.Report{}, fmt.Errorf("failed to persist verdict: %w", err)
		}
	}

	return report, nil
}

func (s *ValidationService) selectDomains(only []string) ([]config.DomainConfig, error) {
	if len(only) == 0 {
		return s.cfg.Domains, nil
	}
	domains := make([]config.DomainConfig, 0, len(only))
	for _, id := range only {
		d, ok := s.cfg.Domain(id)
		if !ok {
			return nil, fmt.Errorf("domain %q is not configured", id)
		}
		domains = append(domains, d)
	}
	return domains, nil
}

// configHash fingerprints every parameter that influences a domain's verdict
func (s *ValidationService) configHash(d config.DomainConfig) string {
	return backtest.HashParameters(struct {
		Domain      config.DomainConfig     `json:"domain"`
		Backtest    backtest.BacktestConfig `json:"backtest"`
		Policy      strategy.PolicyConfig   `json:"policy"`
		Staking     config.StakingConfig    `json:"staking"`
		AuxDefaults map[string]float64      `json:"aux_defaults"`
	}{
		Domain:      d,
		Backtest:    s.backtest,
		Policy:      s.policy.Config(),
		Staking:     s.cfg.Staking,
		AuxDefaults: s.normalizer.AuxDefaults(),
	})
}
