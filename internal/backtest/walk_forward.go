package backtest

import (
	"context"
	"fmt"

	"github.com/yourusername/odds-backtester/internal/models"
)

// Fold is one expanding-window train/test partition
type Fold struct {
	Index    int
	Training []models.Match
	Test     []models.Match
}

// FoldResult is the evaluation of one fold's test window
type FoldResult struct {
	Index         int                      `json:"index" yaml:"index"`
	TrainingSize  int                      `json:"training_size" yaml:"training_size"`
	TestSize      int                      `json:"test_size" yaml:"test_size"`
	FinalBankroll float64                  `json:"final_bankroll" yaml:"final_bankroll"`
	Verdict       models.ValidationVerdict `json:"verdict" yaml:"verdict"`
}

// ScopeInSample marks results computed with a model that may have seen the
// evaluated matches during training.
const ScopeInSample = "in_sample"

// WalkForwardResult aggregates all folds. The snapshot is fixed rather than
// retrained per fold, so every fold is in-sample.
type WalkForwardResult struct {
	Scope            string       `json:"scope" yaml:"scope"`
	Folds            []FoldResult `json:"folds" yaml:"folds"`
	ConsistencyScore float64      `json:"consistency_score" yaml:"consistency_score"`
	PassRate         float64      `json:"pass_rate" yaml:"pass_rate"`
}

// WalkForwardFolds cuts the chronologically sorted matches into k+1 blocks;
// fold i trains on blocks [0,i) and tests on block i.
func WalkForwardFolds(matches []models.Match, k int) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("walk-forward needs at least 2 folds, got %d", k)
	}
	sorted := SortChronologically(matches)
	if err := checkSeasonOrder(sorted); err != nil {
		return nil, err
	}

	n := len(sorted)
	if n < k+1 {
		return nil, fmt.Errorf("walk-forward with %d folds needs at least %d matches, got %d", k, k+1, n)
	}

	folds := make([]Fold, 0, k)
	for i := 1; i <= k; i++ {
		boundary := n * i / (k + 1)
		end := n * (i + 1) / (k + 1)
		if err := checkBoundary(sorted, boundary); err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}
		folds = append(folds, Fold{
			Index:    i,
			Training: sorted[:boundary],
			Test:     sorted[boundary:end],
		})
	}
	return folds, nil
}

// RunWalkForward simulates every fold's test window with a fresh bankroll
func RunWalkForward(ctx context.Context, sim *Simulator, matches []models.Match, cfg BacktestConfig) (WalkForwardResult, error) {
	if sim == nil {
		return WalkForwardResult{}, fmt.Errorf("simulator is required")
	}
	folds, err := WalkForwardFolds(matches, cfg.WalkForwardFolds)
	if err != nil {
		return WalkForwardResult{}, err
	}

	replay := sim.replay()
	result := WalkForwardResult{Scope: ScopeInSample, Folds: make([]FoldResult, 0, len(folds))}
	for _, fold := range folds {
		sr, err := replay.Run(ctx, fold.Test, cfg.StartingBankroll)
		if err != nil {
			return WalkForwardResult{}, fmt.Errorf("fold %d: %w", fold.Index, err)
		}
		result.Folds = append(result.Folds, FoldResult{
			Index:         fold.Index,
			TrainingSize:  len(fold.Training),
			TestSize:      len(fold.Test),
			FinalBankroll: sr.FinalBankroll,
			Verdict:       Evaluate(sr.Ledger, cfg.Thresholds),
		})
	}

	result.ConsistencyScore = CalculateConsistency(result.Folds)
	passed := 0
	for _, f := range result.Folds {
		if f.Verdict.Passed {
			passed++
		}
	}
	result.PassRate = float64(passed) / float64(len(result.Folds))
	return result, nil
}

// CalculateConsistency is the share of folds with positive ROI
func CalculateConsistency(folds []FoldResult) float64 {
	if len(folds) == 0 {
		return 0
	}
	profitable := 0
	for _, f := range folds {
		if f.Verdict.ROI > 0 {
			profitable++
		}
	}
	return float64(profitable) / float64(len(folds))
}
