package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/odds-backtester/internal/features"
	"github.com/yourusername/odds-backtester/internal/models"
	"github.com/yourusername/odds-backtester/internal/strategy"
)

type fixedClassifier struct {
	domain  string
	version string
	dist    models.ProbabilityDistribution
	err     error
	calls   int
}

func (c *fixedClassifier) Domain() string  { return c.domain }
func (c *fixedClassifier) Version() string { return c.version }

func (c *fixedClassifier) Predict(_ context.Context, _ features.FeatureVector) (models.ProbabilityDistribution, error) {
	c.calls++
	if c.err != nil {
		return models.ProbabilityDistribution{}, c.err
	}
	return c.dist, nil
}

func homeFavourite() *fixedClassifier {
	return &fixedClassifier{
		domain:  "E0",
		version: "v1",
		dist:    models.ProbabilityDistribution{Home: 0.62, Draw: 0.20, Away: 0.18},
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func newTestSimulator(clf *fixedClassifier) *Simulator {
	normalizer, err := features.NewNormalizer(nil)
	if err != nil {
		panic(err)
	}
	staker, err := strategy.NewFlatStaker(10)
	if err != nil {
		panic(err)
	}
	policy, err := strategy.NewPolicy(strategy.PolicyConfig{ConfidenceThreshold: 0.6, MinOdds: 1.5}, staker)
	if err != nil {
		panic(err)
	}
	sim, err := NewSimulator(normalizer, clf, policy, quietLogger())
	if err != nil {
		panic(err)
	}
	return sim
}

var baseKickoff = time.Date(2023, 8, 11, 19, 0, 0, 0, time.UTC)

func testMatch(i int, outcome models.Outcome) models.Match {
	return models.Match{
		ID:          fmt.Sprintf("m%02d", i),
		Domain:      "E0",
		Season:      "2023-24",
		Kickoff:     baseKickoff.Add(time.Duration(i) * 24 * time.Hour),
		HomeTeam:    fmt.Sprintf("Home %d", i),
		AwayTeam:    fmt.Sprintf("Away %d", i),
		Odds:        models.OddsTriple{Home: 1.8, Draw: 3.5, Away: 4.2},
		TrueOutcome: outcome,
	}
}

func testMatches(n int) []models.Match {
	matches := make([]models.Match, n)
	for i := 0; i < n; i++ {
		outcome := models.OutcomeHome
		if i%3 == 2 {
			outcome = models.OutcomeAway
		}
		matches[i] = testMatch(i, outcome)
	}
	return matches
}

func ledgerOf(wins, losses int, stake, odds float64) []models.LedgerEntry {
	ledger := make([]models.LedgerEntry, 0, wins+losses)
	for i := 0; i < wins+losses; i++ {
		correct := i < wins
		profit := -stake
		if correct {
			profit = stake*odds - stake
		}
		ledger = append(ledger, models.LedgerEntry{
			MatchID:        fmt.Sprintf("m%02d", i),
			Kickoff:        baseKickoff.Add(time.Duration(i) * time.Hour),
			Outcome:        models.OutcomeHome,
			Confidence:     0.7,
			SelectedOdds:   odds,
			Stake:          stake,
			OutcomeCorrect: correct,
			Profit:         profit,
		})
	}
	return ledger
}
