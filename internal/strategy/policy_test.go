package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/odds-backtester/internal/models"
)

func newFlatPolicy(t *testing.T, threshold, minOdds, stake float64) *Policy {
	t.Helper()
	staker, err := NewFlatStaker(stake)
	require.NoError(t, err)
	policy, err := NewPolicy(PolicyConfig{ConfidenceThreshold: threshold, MinOdds: minOdds}, staker)
	require.NoError(t, err)
	return policy
}

func TestDecide_AcceptsConfidentHomePick(t *testing.T) {
	policy := newFlatPolicy(t, 0.6, 1.5, 10)

	decision := policy.Decide(
		models.ProbabilityDistribution{Home: 0.62, Draw: 0.20, Away: 0.18},
		models.OddsTriple{Home: 1.8, Draw: 3.5, Away: 4.2},
		1000,
	)

	assert.Equal(t, models.OutcomeHome, decision.Outcome)
	assert.Equal(t, 10.0, decision.Stake)
	assert.Equal(t, 1.8, decision.SelectedOdds)
	assert.Equal(t, 0.62, decision.Confidence)
	assert.True(t, decision.IsBet())
}

func TestDecide_RejectsBelowThresholds(t *testing.T) {
	policy := newFlatPolicy(t, 0.6, 1.5, 10)

	tests := []struct {
		name string
		dist models.ProbabilityDistribution
		odds models.OddsTriple
	}{
		{
			name: "low confidence",
			dist: models.ProbabilityDistribution{Home: 0.5, Draw: 0.3, Away: 0.2},
			odds: models.OddsTriple{Home: 1.8, Draw: 3.5, Away: 4.2},
		},
		{
			name: "short odds",
			dist: models.ProbabilityDistribution{Home: 0.8, Draw: 0.1, Away: 0.1},
			odds: models.OddsTriple{Home: 1.2, Draw: 6.5, Away: 11},
		},
		{
			name: "missing price",
			dist: models.ProbabilityDistribution{Home: 0.8, Draw: 0.1, Away: 0.1},
			odds: models.OddsTriple{Home: math.NaN(), Draw: 6.5, Away: 11},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := policy.Decide(tt.dist, tt.odds, 1000)
			assert.Equal(t, models.OutcomeNone, decision.Outcome)
			assert.Zero(t, decision.Stake)
			assert.False(t, decision.IsBet())
		})
	}
}

func TestDecide_ThresholdIsInclusive(t *testing.T) {
	policy := newFlatPolicy(t, 0.6, 1.8, 10)

	decision := policy.Decide(
		models.ProbabilityDistribution{Home: 0.6, Draw: 0.25, Away: 0.15},
		models.OddsTriple{Home: 1.8, Draw: 3.5, Away: 4.2},
		1000,
	)
	assert.Equal(t, models.OutcomeHome, decision.Outcome)
}

func TestDecide_IsPure(t *testing.T) {
	policy := newFlatPolicy(t, 0.4, 1.5, 10)
	dist := models.ProbabilityDistribution{Home: 0.3, Draw: 0.25, Away: 0.45}
	odds := models.OddsTriple{Home: 3.1, Draw: 3.4, Away: 2.3}

	first := policy.Decide(dist, odds, 500)
	second := policy.Decide(dist, odds, 500)
	assert.Equal(t, first, second)
	assert.Equal(t, models.OutcomeAway, first.Outcome)
}

func TestReprice_MovesBetToSettlementOdds(t *testing.T) {
	staker, err := NewKellyStaker(0.5, 0.05)
	require.NoError(t, err)
	policy, err := NewPolicy(PolicyConfig{ConfidenceThreshold: 0.5, MinOdds: 1.5}, staker)
	require.NoError(t, err)

	dist := models.ProbabilityDistribution{Home: 0.52, Draw: 0.28, Away: 0.20}
	decision := policy.Decide(dist, models.OddsTriple{Home: 2.0, Draw: 3.5, Away: 5.0}, 1000)
	require.True(t, decision.IsBet())
	assert.InDelta(t, 20.0, decision.Stake, 1e-9)

	// b=1.5, p=0.52 -> f*=0.2, half Kelly 0.1, capped at 5%
	repriced := policy.Reprice(decision, models.OddsTriple{Home: 2.5, Draw: 3.5, Away: 5.0}, 1000)
	assert.Equal(t, 2.5, repriced.SelectedOdds)
	assert.InDelta(t, 50.0, repriced.Stake, 1e-9)

	// settlement price with no edge withdraws the bet
	withdrawn := policy.Reprice(decision, models.OddsTriple{Home: 1.6, Draw: 3.5, Away: 5.0}, 1000)
	assert.False(t, withdrawn.IsBet())
}

func TestReprice_LeavesNoBetAndSamePriceUntouched(t *testing.T) {
	policy := newFlatPolicy(t, 0.6, 1.5, 10)
	odds := models.OddsTriple{Home: 1.8, Draw: 3.5, Away: 4.2}

	kept := policy.Reprice(models.NoBet(0.4), odds, 1000)
	assert.Equal(t, models.OutcomeNone, kept.Outcome)
	assert.Zero(t, kept.Stake)
	assert.True(t, math.IsNaN(kept.SelectedOdds))

	decision := policy.Decide(models.ProbabilityDistribution{Home: 0.62, Draw: 0.20, Away: 0.18}, odds, 1000)
	assert.Equal(t, decision, policy.Reprice(decision, odds, 1000))
}

func TestSelectOutcome_TieBreak(t *testing.T) {
	assert.Equal(t, models.OutcomeHome, SelectOutcome(models.ProbabilityDistribution{Home: 0.4, Draw: 0.4, Away: 0.2}))
	assert.Equal(t, models.OutcomeAway, SelectOutcome(models.ProbabilityDistribution{Home: 0.2, Draw: 0.4, Away: 0.4}))
	assert.Equal(t, models.OutcomeHome, SelectOutcome(models.ProbabilityDistribution{Home: 0.4, Draw: 0.2, Away: 0.4}))
	assert.Equal(t, models.OutcomeDraw, SelectOutcome(models.ProbabilityDistribution{Home: 0.3, Draw: 0.4, Away: 0.3}))
}

func TestNewPolicy_Validation(t *testing.T) {
	staker, err := NewFlatStaker(10)
	require.NoError(t, err)

	_, err = NewPolicy(PolicyConfig{ConfidenceThreshold: 0, MinOdds: 1.5}, staker)
	assert.Error(t, err)
	_, err = NewPolicy(PolicyConfig{ConfidenceThreshold: 1.2, MinOdds: 1.5}, staker)
	assert.Error(t, err)
	_, err = NewPolicy(PolicyConfig{ConfidenceThreshold: 0.6, MinOdds: 0.9}, staker)
	assert.Error(t, err)
	_, err = NewPolicy(PolicyConfig{ConfidenceThreshold: 0.6, MinOdds: 1.5}, nil)
	assert.Error(t, err)
}

func TestFlatStaker_CapsAtBankroll(t *testing.T) {
	staker, err := NewFlatStaker(10)
	require.NoError(t, err)

	assert.Equal(t, 10.0, staker.Stake(0.7, 2.0, 100))
	assert.Equal(t, 4.0, staker.Stake(0.7, 2.0, 4))
	assert.Zero(t, staker.Stake(0.7, 2.0, 0))
}

func TestKellyStaker(t *testing.T) {
	staker, err := NewKellyStaker(0.5, 0.05)
	require.NoError(t, err)

	// b=1, p=0.55 -> f*=0.1, half Kelly 0.05, below the 5% cap only at equality
	assert.InDelta(t, 50.0, staker.Stake(0.55, 2.0, 1000), 1e-9)

	// b=1, p=0.52 -> f*=0.04, half Kelly 0.02
	assert.InDelta(t, 20.0, staker.Stake(0.52, 2.0, 1000), 1e-9)

	// large edge clipped to 5% of bankroll
	assert.InDelta(t, 50.0, staker.Stake(0.9, 3.0, 1000), 1e-9)

	// no edge
	assert.Zero(t, staker.Stake(0.4, 2.0, 1000))
}

func TestDecide_KellyNoEdgeIsNoBet(t *testing.T) {
	staker, err := NewKellyStaker(0.5, 0.05)
	require.NoError(t, err)
	policy, err := NewPolicy(PolicyConfig{ConfidenceThreshold: 0.6, MinOdds: 1.2}, staker)
	require.NoError(t, err)

	// p=0.62 at 1.5: f* = (0.5*0.62-0.38)/0.5 < 0
	decision := policy.Decide(
		models.ProbabilityDistribution{Home: 0.62, Draw: 0.2, Away: 0.18},
		models.OddsTriple{Home: 1.5, Draw: 4.0, Away: 6.0},
		1000,
	)
	assert.Equal(t, models.OutcomeNone, decision.Outcome)
	assert.Zero(t, decision.Stake)
}
