package backtest

import (
	"math"
	"math/rand"
	"sort"

	"github.com/yourusername/odds-backtester/internal/models"
)

// DefaultMonteCarloSeed keeps bootstrap results reproducible
const DefaultMonteCarloSeed int64 = 42

// MonteCarloConfig configures the ledger bootstrap
type MonteCarloConfig struct {
	Iterations      int
	Seed            int64
	InitialBankroll float64
}

// MonteCarloResult summarises resampled holdout outcomes
type MonteCarloResult struct {
	Iterations          int     `json:"iterations" yaml:"iterations"`
	Seed                int64   `json:"seed" yaml:"seed"`
	MeanROI             float64 `json:"mean_roi" yaml:"mean_roi"`
	StdROI              float64 `json:"std_roi" yaml:"std_roi"`
	ROIP5               float64 `json:"roi_p5" yaml:"roi_p5"`
	ROIP50              float64 `json:"roi_p50" yaml:"roi_p50"`
	ROIP95              float64 `json:"roi_p95" yaml:"roi_p95"`
	ProbabilityOfProfit float64 `json:"probability_of_profit" yaml:"probability_of_profit"`
	ProbabilityOfRuin   float64 `json:"probability_of_ruin" yaml:"probability_of_ruin"`
}

// RunMonteCarlo resamples the ledger's bets with replacement and replays each
// path against the starting bankroll. A path is ruined, and stops, the first
// time the bankroll reaches zero.
func RunMonteCarlo(ledger []models.LedgerEntry, cfg MonteCarloConfig) MonteCarloResult {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1000
	}
	if cfg.Seed == 0 {
		cfg.Seed = DefaultMonteCarloSeed
	}
	result := MonteCarloResult{Iterations: cfg.Iterations, Seed: cfg.Seed}

	bets := make([]models.LedgerEntry, 0, len(ledger))
	for _, e := range ledger {
		if e.Stake > 0 {
			bets = append(bets, e)
		}
	}
	if len(bets) == 0 || cfg.InitialBankroll <= 0 {
		return result
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	rois := make([]float64, cfg.Iterations)
	ruined := 0
	profitable := 0

	for i := 0; i < cfg.Iterations; i++ {
		staked := 0.0
		profit := 0.0
		bankroll := cfg.InitialBankroll
		broke := false
		for range bets {
			bet := bets[rng.Intn(len(bets))]
			staked += bet.Stake
			profit += bet.Profit
			bankroll += bet.Profit
			if bankroll <= 0 {
				broke = true
				break
			}
		}
		rois[i] = profit / staked
		if broke {
			ruined++
		} else if profit > 0 {
			profitable++
		}
	}

	mean, std := meanStd(rois)
	result.MeanROI = mean
	result.StdROI = std
	result.ROIP5 = percentile(rois, 0.05)
	result.ROIP50 = percentile(rois, 0.50)
	result.ROIP95 = percentile(rois, 0.95)
	result.ProbabilityOfProfit = float64(profitable) / float64(cfg.Iterations)
	result.ProbabilityOfRuin = float64(ruined) / float64(cfg.Iterations)
	return result
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	idx := int(math.Floor(p * float64(len(sorted)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
