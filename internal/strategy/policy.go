// Package strategy converts classifier probabilities into betting decisions.
package strategy

import (
	"fmt"
	"math"

	"github.com/yourusername/odds-backtester/internal/models"
)

// PolicyConfig holds the acceptance thresholds.
type PolicyConfig struct {
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	MinOdds             float64 `json:"min_odds"`
}

// Validate checks the thresholds are usable
func (c PolicyConfig) Validate() error {
	if c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be in (0,1]")
	}
	if c.MinOdds < 1 || math.IsInf(c.MinOdds, 0) || math.IsNaN(c.MinOdds) {
		return fmt.Errorf("min_odds must be >= 1")
	}
	return nil
}

// tieBreakOrder resolves equal probabilities: home beats away beats draw.
var tieBreakOrder = []models.Outcome{models.OutcomeHome, models.OutcomeAway, models.OutcomeDraw}

// Policy is a confidence- and payout-gated decision rule.
type Policy struct {
	config PolicyConfig
	staker Staker
}

// NewPolicy creates a decision policy
func NewPolicy(cfg PolicyConfig, staker Staker) (*Policy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if staker == nil {
		return nil, fmt.Errorf("staker is required")
	}
	return &Policy{config: cfg, staker: staker}, nil
}

// Config returns the policy thresholds
func (p *Policy) Config() PolicyConfig {
	return p.config
}

// Staker returns the configured staker
func (p *Policy) Staker() Staker {
	return p.staker
}

// Decide picks the most probable outcome and accepts it when both the
// confidence and the quoted odds clear their thresholds.
func (p *Policy) Decide(dist models.ProbabilityDistribution, odds models.OddsTriple, bankroll float64) models.Decision {
	selected := SelectOutcome(dist)
	confidence := dist.For(selected)
	selectedOdds := odds.For(selected)

	if confidence < p.config.ConfidenceThreshold {
		return models.NoBet(confidence)
	}
	if math.IsNaN(selectedOdds) || selectedOdds < p.config.MinOdds {
		return models.NoBet(confidence)
	}

	stake := p.staker.Stake(confidence, selectedOdds, bankroll)
	if stake <= 0 || math.IsNaN(stake) {
		return models.NoBet(confidence)
	}

	return models.Decision{
		Outcome:      selected,
		Confidence:   confidence,
		SelectedOdds: selectedOdds,
		Stake:        stake,
	}
}

// Reprice moves an accepted bet onto the odds it settles at and restakes it.
// The min_odds gate is not reapplied.
func (p *Policy) Reprice(d models.Decision, odds models.OddsTriple, bankroll float64) models.Decision {
	if !d.IsBet() {
		return d
	}
	settleOdds := odds.For(d.Outcome)
	if settleOdds == d.SelectedOdds {
		return d
	}
	stake := p.staker.Stake(d.Confidence, settleOdds, bankroll)
	if stake <= 0 || math.IsNaN(stake) {
		return models.NoBet(d.Confidence)
	}
	d.SelectedOdds = settleOdds
	d.Stake = stake
	return d
}

// SelectOutcome returns the argmax of the distribution using the fixed tie-break order.
func SelectOutcome(dist models.ProbabilityDistribution) models.Outcome {
	best := tieBreakOrder[0]
	bestP := dist.For(best)
	for _, candidate := range tieBreakOrder[1:] {
		if dist.For(candidate) > bestP {
			best = candidate
			bestP = dist.For(candidate)
		}
	}
	return best
}
