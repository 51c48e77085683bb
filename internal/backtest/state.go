package backtest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/odds-backtester/internal/models"
)

// BacktestState is the accumulator threaded through a simulation.
// Bankroll arithmetic is exact so replays agree to the last digit.
type BacktestState struct {
	bankroll    decimal.Decimal
	peak        decimal.Decimal
	Ledger      []models.LedgerEntry
	EquityCurve EquityCurve
	Warnings    []Warning
	Considered  int
}

// Warning records a match that was skipped rather than simulated
type Warning struct {
	MatchID string `json:"match_id"`
	Reason  string `json:"reason"`
}

// NewBacktestState initializes backtest state
func NewBacktestState(initialBankroll float64, start time.Time) *BacktestState {
	b := decimal.NewFromFloat(initialBankroll)
	state := &BacktestState{
		bankroll:    b,
		peak:        b,
		Ledger:      []models.LedgerEntry{},
		EquityCurve: EquityCurve{},
		Warnings:    []Warning{},
	}
	state.recordEquityPoint(start)
	return state
}

// Bankroll returns the current bankroll
func (s *BacktestState) Bankroll() float64 {
	return s.bankroll.InexactFloat64()
}

// Settle applies a settled bet to the bankroll and appends its ledger entry
func (s *BacktestState) Settle(match *models.Match, decision models.Decision, correct bool) models.LedgerEntry {
	stake := decimal.NewFromFloat(decision.Stake)
	profit := stake.Neg()
	if correct {
		profit = stake.Mul(decimal.NewFromFloat(decision.SelectedOdds)).Sub(stake)
	}

	s.bankroll = s.bankroll.Add(profit)
	if s.bankroll.GreaterThan(s.peak) {
		s.peak = s.bankroll
	}

	entry := models.LedgerEntry{
		MatchID:         match.ID,
		Kickoff:         match.Kickoff,
		Outcome:         decision.Outcome,
		Confidence:      decision.Confidence,
		SelectedOdds:    decision.SelectedOdds,
		Stake:           decision.Stake,
		OutcomeCorrect:  correct,
		Profit:          profit.InexactFloat64(),
		RunningBankroll: s.bankroll.InexactFloat64(),
	}
	s.Ledger = append(s.Ledger, entry)
	s.recordEquityPoint(match.Kickoff)
	return entry
}

// Skip records a match that could not be simulated
func (s *BacktestState) Skip(matchID, reason string) {
	s.Warnings = append(s.Warnings, Warning{MatchID: matchID, Reason: reason})
}

// GetCurrentDrawdown calculates peak-to-trough drawdown
func (s *BacktestState) GetCurrentDrawdown() float64 {
	if s.peak.IsZero() {
		return 0
	}
	dd := s.peak.Sub(s.bankroll).Div(s.peak)
	if dd.IsNegative() {
		return 0
	}
	return dd.InexactFloat64()
}

func (s *BacktestState) recordEquityPoint(t time.Time) {
	s.EquityCurve = append(s.EquityCurve, EquityPoint{
		Time:     t,
		Value:    s.bankroll.InexactFloat64(),
		Drawdown: s.GetCurrentDrawdown(),
	})
}
