package models

import (
	"fmt"
	"math"
)

// Outcome is a full-time match result or the absence of a bet.
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeDraw Outcome = "draw"
	OutcomeAway Outcome = "away"
	OutcomeNone Outcome = "none"
)

// ParseResultCode maps football-data FTR codes (H/D/A) to an Outcome.
func ParseResultCode(code string) (Outcome, error) {
	switch code {
	case "H":
		return OutcomeHome, nil
	case "D":
		return OutcomeDraw, nil
	case "A":
		return OutcomeAway, nil
	}
	return OutcomeNone, fmt.Errorf("%w: unknown result code %q", ErrMissingOutcome, code)
}

// OddsTriple holds decimal odds for the three match outcomes.
type OddsTriple struct {
	Home float64 `json:"home" yaml:"home"`
	Draw float64 `json:"draw" yaml:"draw"`
	Away float64 `json:"away" yaml:"away"`
}

// Validate checks every leg is strictly positive and finite.
func (o OddsTriple) Validate() error {
	legs := []struct {
		name  string
		value float64
	}{
		{"home", o.Home},
		{"draw", o.Draw},
		{"away", o.Away},
	}
	for _, leg := range legs {
		if math.IsNaN(leg.value) || math.IsInf(leg.value, 0) || leg.value <= 0 {
			return fmt.Errorf("%w: %s=%v", ErrInvalidOdds, leg.name, leg.value)
		}
	}
	return nil
}

// For returns the odds quoted for an outcome, NaN for OutcomeNone.
func (o OddsTriple) For(outcome Outcome) float64 {
	switch outcome {
	case OutcomeHome:
		return o.Home
	case OutcomeDraw:
		return o.Draw
	case OutcomeAway:
		return o.Away
	}
	return math.NaN()
}

// ProbabilityDistribution is a classifier's estimate over home/draw/away.
type ProbabilityDistribution struct {
	Home float64 `json:"home" yaml:"home"`
	Draw float64 `json:"draw" yaml:"draw"`
	Away float64 `json:"away" yaml:"away"`
}

const probabilityTolerance = 1e-6

// Validate rejects negative, non-finite or non-normalised distributions.
func (p ProbabilityDistribution) Validate() error {
	sum := 0.0
	for _, v := range []float64{p.Home, p.Draw, p.Away} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: component %v", ErrInvalidProbability, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > probabilityTolerance {
		return fmt.Errorf("%w: sums to %v", ErrInvalidProbability, sum)
	}
	return nil
}

// For returns the probability assigned to an outcome.
func (p ProbabilityDistribution) For(outcome Outcome) float64 {
	switch outcome {
	case OutcomeHome:
		return p.Home
	case OutcomeDraw:
		return p.Draw
	case OutcomeAway:
		return p.Away
	}
	return 0
}
