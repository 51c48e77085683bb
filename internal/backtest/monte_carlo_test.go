package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/odds-backtester/internal/models"
)

func TestRunMonteCarloDeterministic(t *testing.T) {
	ledger := ledgerOf(6, 4, 10, 2.0)
	cfg := MonteCarloConfig{Iterations: 500, Seed: 7, InitialBankroll: 1000}

	first := RunMonteCarlo(ledger, cfg)
	second := RunMonteCarlo(ledger, cfg)
	assert.Equal(t, first, second)
	assert.Equal(t, 500, first.Iterations)
	assert.LessOrEqual(t, first.ROIP5, first.ROIP50)
	assert.LessOrEqual(t, first.ROIP50, first.ROIP95)
	assert.Greater(t, first.ProbabilityOfProfit, 0.5)
}

func TestRunMonteCarloAllWinners(t *testing.T) {
	result := RunMonteCarlo(ledgerOf(5, 0, 10, 2.0), MonteCarloConfig{Iterations: 100, InitialBankroll: 1000})

	assert.Equal(t, DefaultMonteCarloSeed, result.Seed)
	assert.Equal(t, 1.0, result.ProbabilityOfProfit)
	assert.Equal(t, 0.0, result.ProbabilityOfRuin)
	assert.InDelta(t, 1.0, result.MeanROI, 1e-12)
	assert.InDelta(t, 0.0, result.StdROI, 1e-12)
}

func TestRunMonteCarloRuin(t *testing.T) {
	result := RunMonteCarlo(ledgerOf(0, 4, 10, 2.0), MonteCarloConfig{Iterations: 50, InitialBankroll: 30})
	assert.Equal(t, 1.0, result.ProbabilityOfRuin)
	assert.Equal(t, 0.0, result.ProbabilityOfProfit)
}

func TestRunMonteCarloEmptyLedger(t *testing.T) {
	result := RunMonteCarlo(nil, MonteCarloConfig{Iterations: 10, InitialBankroll: 1000})
	assert.Equal(t, 10, result.Iterations)
	assert.Equal(t, 0.0, result.MeanROI)
}

func TestRunMonteCarloRuinIsPathDependent(t *testing.T) {
	// two losses in a row bust a 150 bankroll even though the win would recover it
	ledger := []models.LedgerEntry{
		{MatchID: "m1", Stake: 100, Profit: -100},
		{MatchID: "m2", Stake: 100, Profit: -100},
		{MatchID: "m3", Stake: 100, Profit: 300, OutcomeCorrect: true},
	}

	result := RunMonteCarlo(ledger, MonteCarloConfig{Iterations: 5000, Seed: 1, InitialBankroll: 150})

	// P(first two draws are losses) = (2/3)^2
	assert.InDelta(t, 4.0/9.0, result.ProbabilityOfRuin, 0.03)
	assert.LessOrEqual(t, result.ProbabilityOfProfit+result.ProbabilityOfRuin, 1.0)
}

func TestRunMonteCarloEndingLossIsNotRuin(t *testing.T) {
	ledger := []models.LedgerEntry{{MatchID: "m1", Stake: 10, Profit: -10}}

	result := RunMonteCarlo(ledger, MonteCarloConfig{Iterations: 20, InitialBankroll: 100})
	assert.Equal(t, 0.0, result.ProbabilityOfRuin)
	assert.Equal(t, 0.0, result.ProbabilityOfProfit)
	assert.InDelta(t, -1.0, result.MeanROI, 1e-12)
}
