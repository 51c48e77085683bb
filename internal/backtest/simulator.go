package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/odds-backtester/internal/features"
	"github.com/yourusername/odds-backtester/internal/metrics"
	"github.com/yourusername/odds-backtester/internal/ml"
	"github.com/yourusername/odds-backtester/internal/models"
	"github.com/yourusername/odds-backtester/internal/strategy"
)

// SimulationResult is the outcome of replaying a holdout window
type SimulationResult struct {
	Domain           string               `json:"domain"`
	ModelVersion     string               `json:"model_version"`
	StartingBankroll float64              `json:"starting_bankroll"`
	FinalBankroll    float64              `json:"final_bankroll"`
	Ledger           []models.LedgerEntry `json:"ledger"`
	EquityCurve      EquityCurve          `json:"equity_curve"`
	Warnings         []Warning            `json:"warnings"`
	Considered       int                  `json:"matches_considered"`
}

// Bets returns the number of ledger entries
func (r *SimulationResult) Bets() int {
	return len(r.Ledger)
}

// LedgerJSON serialises the ledger; identical runs produce identical bytes
func (r *SimulationResult) LedgerJSON() ([]byte, error) {
	return json.Marshal(r.Ledger)
}

// Simulator paper-trades a policy over historical matches
type Simulator struct {
	domain     string
	normalizer *features.Normalizer
	classifier ml.Classifier
	policy     *strategy.Policy
	logger     *logrus.Logger

	// replays (walk-forward folds) leave the run metrics untouched
	recordMetrics bool
}

// NewSimulator creates a new holdout simulator
func NewSimulator(normalizer *features.Normalizer, classifier ml.Classifier, policy *strategy.Policy, logger *logrus.Logger) (*Simulator, error) {
	if normalizer == nil {
		return nil, fmt.Errorf("normalizer is required")
	}
	if classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if policy == nil {
		return nil, fmt.Errorf("policy is required")
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Simulator{
		domain:     classifier.Domain(),
		normalizer: normalizer,
		classifier: classifier,
		policy:     policy,
		logger:     logger,

		recordMetrics: true,
	}, nil
}

// replay returns a copy of the simulator that records no metrics
func (s *Simulator) replay() *Simulator {
	r := *s
	r.recordMetrics = false
	return &r
}

// Domain returns the domain of the simulator's classifier
func (s *Simulator) Domain() string {
	return s.domain
}

// Run replays the holdout strictly in kickoff order. Structural errors abort
// the run and name the offending match.
func (s *Simulator) Run(ctx context.Context, holdout []models.Match, startingBankroll float64) (*SimulationResult, error) {
	if startingBankroll <= 0 || math.IsNaN(startingBankroll) || math.IsInf(startingBankroll, 0) {
		return nil, fmt.Errorf("starting bankroll must be positive and finite")
	}

	ordered := SortChronologically(holdout)
	start := time.Time{}
	if len(ordered) > 0 {
		start = ordered[0].Kickoff
	}

	s.logger.WithFields(logrus.Fields{
		"domain":            s.domain,
		"model_version":     s.classifier.Version(),
		"matches":           len(ordered),
		"starting_bankroll": startingBankroll,
	}).Info("Starting holdout simulation")

	state := NewBacktestState(startingBankroll, start)
	for i := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		match := &ordered[i]
		if err := s.processMatch(ctx, match, state); err != nil {
			return nil, fmt.Errorf("match %s: %w", match.ID, err)
		}
	}

	if s.recordMetrics {
		metrics.UpdateFinalBankroll(s.domain, state.Bankroll())
	}

	return &SimulationResult{
		Domain:           s.domain,
		ModelVersion:     s.classifier.Version(),
		StartingBankroll: startingBankroll,
		FinalBankroll:    state.Bankroll(),
		Ledger:           state.Ledger,
		EquityCurve:      state.EquityCurve,
		Warnings:         state.Warnings,
		Considered:       state.Considered,
	}, nil
}

func (s *Simulator) processMatch(ctx context.Context, match *models.Match, state *BacktestState) error {
	switch match.TrueOutcome {
	case models.OutcomeHome, models.OutcomeDraw, models.OutcomeAway:
	default:
		return models.ErrMissingOutcome
	}

	fv, err := s.normalizer.Normalize(match.Odds, match.Aux)
	if err != nil {
		return err
	}

	dist, err := s.classifier.Predict(ctx, fv)
	if err != nil {
		return fmt.Errorf("classifier prediction failed: %w", err)
	}
	if err := dist.Validate(); err != nil {
		return fmt.Errorf("classifier returned %w", err)
	}

	state.Considered++

	settlement := match.SettlementOdds()
	selectedOdds := settlement.For(strategy.SelectOutcome(dist))
	if math.IsNaN(selectedOdds) || math.IsInf(selectedOdds, 0) || selectedOdds <= 0 {
		reason := fmt.Sprintf("selected odds unusable: %v", selectedOdds)
		state.Skip(match.ID, reason)
		if s.recordMetrics {
			metrics.RecordMatchSkipped(s.domain)
		}
		s.logger.WithFields(logrus.Fields{
			"domain":   s.domain,
			"match_id": match.ID,
			"reason":   reason,
		}).Warn("Skipping match")
		return nil
	}

	decision := s.policy.Decide(dist, match.Odds, state.Bankroll())
	decision = s.policy.Reprice(decision, settlement, state.Bankroll())
	if s.recordMetrics {
		metrics.RecordDecision(s.domain, string(decision.Outcome))
	}
	if !decision.IsBet() {
		return nil
	}

	correct := decision.Outcome == match.TrueOutcome
	entry := state.Settle(match, decision, correct)
	if s.recordMetrics {
		metrics.RecordBetSettled(s.domain, correct)
	}

	s.logger.WithFields(logrus.Fields{
		"domain":   s.domain,
		"match_id": entry.MatchID,
		"outcome":  entry.Outcome,
		"stake":    entry.Stake,
		"odds":     entry.SelectedOdds,
		"profit":   entry.Profit,
		"bankroll": entry.RunningBankroll,
	}).Debug("Bet settled")

	return nil
}
