package backtest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/yourusername/odds-backtester/internal/config"
)

// DefaultStartingBankroll is used when no bankroll is configured
const DefaultStartingBankroll = 1000.0

// DefaultHoldoutFraction is the share of matches reserved for evaluation
const DefaultHoldoutFraction = 0.2

// BacktestConfig holds the per-run backtest settings
type BacktestConfig struct {
	HoldoutFraction      float64    `json:"holdout_fraction"`
	StartingBankroll     float64    `json:"starting_bankroll"`
	Thresholds           Thresholds `json:"thresholds"`
	WalkForwardFolds     int        `json:"walk_forward_folds"`
	MonteCarloIterations int        `json:"monte_carlo_iterations"`
	MonteCarloSeed       int64      `json:"monte_carlo_seed"`
}

// DefaultBacktestConfig returns the documented defaults
func DefaultBacktestConfig() BacktestConfig {
	return BacktestConfig{
		HoldoutFraction:  DefaultHoldoutFraction,
		StartingBankroll: DefaultStartingBankroll,
		Thresholds:       DefaultThresholds(),
		MonteCarloSeed:   DefaultMonteCarloSeed,
	}
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.Config) (BacktestConfig, error) {
	if cfg == nil {
		return BacktestConfig{}, fmt.Errorf("config is required")
	}

	bt := BacktestConfig{
		HoldoutFraction:  cfg.Backtest.HoldoutFraction,
		StartingBankroll: cfg.Backtest.StartingBankroll,
		Thresholds: Thresholds{
			MinROI:     cfg.Validation.MinROI,
			MinHitRate: cfg.Validation.MinHitRate,
			MinBets:    cfg.Validation.MinBets,
		},
		WalkForwardFolds:     cfg.Backtest.WalkForwardFolds,
		MonteCarloIterations: cfg.Backtest.MonteCarloIterations,
		MonteCarloSeed:       cfg.Backtest.MonteCarloSeed,
	}

	return bt, bt.Validate()
}

// Validate validates backtest config parameters
func (b BacktestConfig) Validate() error {
	if b.HoldoutFraction <= 0 || b.HoldoutFraction >= 1 {
		return fmt.Errorf("holdout fraction must be in (0,1)")
	}
	if b.StartingBankroll <= 0 {
		return fmt.Errorf("starting bankroll must be positive")
	}
	if b.Thresholds.MinHitRate < 0 || b.Thresholds.MinHitRate > 1 {
		return fmt.Errorf("min hit rate must be in [0,1]")
	}
	if b.Thresholds.MinBets < 0 {
		return fmt.Errorf("min bets cannot be negative")
	}
	if b.WalkForwardFolds < 0 || b.WalkForwardFolds == 1 {
		return fmt.Errorf("walk-forward folds must be 0 or at least 2")
	}
	if b.MonteCarloIterations < 0 {
		return fmt.Errorf("monte carlo iterations cannot be negative")
	}
	return nil
}

// HashParameters fingerprints any JSON-serialisable parameter set
func HashParameters(params interface{}) string {
	data, _ := json.Marshal(params)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}
