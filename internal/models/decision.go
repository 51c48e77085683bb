package models

import (
	"math"
	"time"
)

// Decision is the policy's verdict for a single match.
type Decision struct {
	Outcome      Outcome `json:"outcome"`
	Confidence   float64 `json:"confidence"`
	SelectedOdds float64 `json:"selected_odds"`
	Stake        float64 `json:"stake"`
}

// NoBet returns a decision that places nothing.
func NoBet(confidence float64) Decision {
	return Decision{
		Outcome:      OutcomeNone,
		Confidence:   confidence,
		SelectedOdds: math.NaN(),
		Stake:        0,
	}
}

// IsBet reports whether the decision places a stake.
func (d Decision) IsBet() bool {
	return d.Outcome != OutcomeNone && d.Stake > 0
}

// LedgerEntry records one settled simulated bet.
type LedgerEntry struct {
	MatchID         string    `json:"match_id" db:"match_id"`
	Kickoff         time.Time `json:"kickoff" db:"kickoff"`
	Outcome         Outcome   `json:"outcome" db:"outcome"`
	Confidence      float64   `json:"confidence" db:"confidence"`
	SelectedOdds    float64   `json:"selected_odds" db:"selected_odds"`
	Stake           float64   `json:"stake" db:"stake"`
	OutcomeCorrect  bool      `json:"outcome_correct" db:"outcome_correct"`
	Profit          float64   `json:"profit" db:"profit"`
	RunningBankroll float64   `json:"running_bankroll" db:"running_bankroll"`
}
