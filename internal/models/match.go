package models

import "time"

// Match is one historical fixture with the odds and result needed for a backtest.
type Match struct {
	ID       string    `json:"id"`
	Domain   string    `json:"domain"`
	Season   string    `json:"season"`
	Kickoff  time.Time `json:"kickoff"`
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`
	// Odds feed the normaliser and must be valid.
	Odds OddsTriple `json:"odds"`
	// BettingOdds are the prices a bet settles at. Nil means Odds are used.
	// Individual legs may be NaN when the source had no price.
	BettingOdds *OddsTriple        `json:"betting_odds,omitempty"`
	TrueOutcome Outcome            `json:"true_outcome"`
	Aux         map[string]float64 `json:"aux,omitempty"`
}

// SettlementOdds returns the odds a bet on this match settles at.
func (m *Match) SettlementOdds() OddsTriple {
	if m.BettingOdds != nil {
		return *m.BettingOdds
	}
	return m.Odds
}
