package strategy

import (
	"fmt"
	"math"
)

// Staker sizes an accepted bet.
type Staker interface {
	Name() string
	Stake(probability, odds, bankroll float64) float64
}

// FlatStaker wagers a fixed amount, capped at the available bankroll.
type FlatStaker struct {
	Amount float64
}

// NewFlatStaker creates a flat staker
func NewFlatStaker(amount float64) (*FlatStaker, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("flat stake must be positive")
	}
	return &FlatStaker{Amount: amount}, nil
}

// Name returns the staker name
func (f *FlatStaker) Name() string { return "flat" }

// Stake returns the flat amount or the remaining bankroll if smaller
func (f *FlatStaker) Stake(_, _ float64, bankroll float64) float64 {
	if bankroll <= 0 {
		return 0
	}
	return math.Min(f.Amount, bankroll)
}

// KellyStaker sizes bets with fractional Kelly, bounded to a share of bankroll.
type KellyStaker struct {
	Fraction            float64
	MaxBankrollFraction float64
}

// NewKellyStaker creates a fractional Kelly staker
func NewKellyStaker(fraction, maxBankrollFraction float64) (*KellyStaker, error) {
	if fraction <= 0 || fraction > 1 {
		return nil, fmt.Errorf("kelly fraction must be in (0,1]")
	}
	if maxBankrollFraction <= 0 || maxBankrollFraction > 1 {
		return nil, fmt.Errorf("max bankroll fraction must be in (0,1]")
	}
	return &KellyStaker{Fraction: fraction, MaxBankrollFraction: maxBankrollFraction}, nil
}

// Name returns the staker name
func (k *KellyStaker) Name() string { return "kelly" }

// Stake applies f* = (b*p - q) / b scaled by the Kelly fraction.
// Returns 0 when the edge is not positive.
func (k *KellyStaker) Stake(probability, odds, bankroll float64) float64 {
	if probability <= 0 || odds <= 1 || bankroll <= 0 {
		return 0
	}
	p := probability
	q := 1.0 - p
	b := odds - 1.0
	kelly := (b*p - q) / b
	if kelly <= 0 {
		return 0
	}
	stake := bankroll * kelly * k.Fraction
	return math.Min(stake, bankroll*k.MaxBankrollFraction)
}
