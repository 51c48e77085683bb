// Package features turns raw bookmaker odds into de-vigged model features.
package features

import (
	"fmt"
	"math"

	"github.com/yourusername/odds-backtester/internal/models"
)

// Odds-derived feature names, in output order.
const (
	TrueProbHome      = "true_prob_home"
	TrueProbDraw      = "true_prob_draw"
	TrueProbAway      = "true_prob_away"
	BookmakerMargin   = "bookmaker_margin"
	MarketEfficiency  = "market_efficiency"
	ProbRatioDrawAway = "prob_ratio_draw_away"
	ProbRatioHomeDraw = "prob_ratio_home_draw"
	LogOddsHomeDraw   = "log_odds_home_draw"
	LogOddsDrawAway   = "log_odds_draw_away"
	UncertaintyIndex  = "uncertainty_index"
	MarketEntropy     = "market_entropy"
)

// Auxiliary statistic names, in output order.
const (
	AuxHomeForm     = "home_form"
	AuxAwayForm     = "away_form"
	AuxHomeGoalsAvg = "home_goals_avg"
	AuxAwayGoalsAvg = "away_goals_avg"
)

var oddsFeatureNames = []string{
	TrueProbHome,
	TrueProbDraw,
	TrueProbAway,
	BookmakerMargin,
	MarketEfficiency,
	ProbRatioDrawAway,
	ProbRatioHomeDraw,
	LogOddsHomeDraw,
	LogOddsDrawAway,
	UncertaintyIndex,
	MarketEntropy,
}

// AuxStatNames lists the auxiliary statistics appended after the odds features.
var AuxStatNames = []string{AuxHomeForm, AuxAwayForm, AuxHomeGoalsAvg, AuxAwayGoalsAvg}

// DefaultAuxStats fill auxiliary statistics absent from a match.
// Form is points per game over the last five matches; goal averages are league-typical.
var DefaultAuxStats = map[string]float64{
	AuxHomeForm:     1.35,
	AuxAwayForm:     1.35,
	AuxHomeGoalsAvg: 1.5,
	AuxAwayGoalsAvg: 1.2,
}

// Normalizer derives feature vectors from odds triples.
type Normalizer struct {
	defaults map[string]float64
	names    []string
}

// NewNormalizer builds a normalizer whose aux defaults are DefaultAuxStats
// overridden by the given values. Unknown override keys are rejected.
func NewNormalizer(overrides map[string]float64) (*Normalizer, error) {
	defaults := make(map[string]float64, len(DefaultAuxStats))
	for k, v := range DefaultAuxStats {
		defaults[k] = v
	}
	for k, v := range overrides {
		if _, ok := DefaultAuxStats[k]; !ok {
			return nil, fmt.Errorf("unknown auxiliary statistic %q", k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("auxiliary default %s must be finite", k)
		}
		defaults[k] = v
	}

	names := make([]string, 0, len(oddsFeatureNames)+len(AuxStatNames))
	names = append(names, oddsFeatureNames...)
	names = append(names, AuxStatNames...)

	return &Normalizer{defaults: defaults, names: names}, nil
}

// FeatureNames returns the output order of Normalize.
func (n *Normalizer) FeatureNames() []string {
	out := make([]string, len(n.names))
	copy(out, n.names)
	return out
}

// AuxDefaults returns a copy of the effective auxiliary defaults.
func (n *Normalizer) AuxDefaults() map[string]float64 {
	out := make(map[string]float64, len(n.defaults))
	for k, v := range n.defaults {
		out[k] = v
	}
	return out
}

// Normalize computes the feature vector for one set of odds.
func (n *Normalizer) Normalize(odds models.OddsTriple, aux map[string]float64) (FeatureVector, error) {
	if err := odds.Validate(); err != nil {
		return FeatureVector{}, err
	}

	invHome, invDraw, invAway := 1/odds.Home, 1/odds.Draw, 1/odds.Away
	inv := invHome + invDraw + invAway
	if math.IsInf(inv, 0) {
		return FeatureVector{}, fmt.Errorf("%w: implied probabilities overflow", models.ErrInvalidOdds)
	}

	pHome := invHome / inv
	pDraw := invDraw / inv
	pAway := invAway / inv

	if pAway == 0 {
		return FeatureVector{}, fmt.Errorf("%w: true_prob_away is zero", models.ErrDivisionByZero)
	}
	if pDraw == 0 {
		return FeatureVector{}, fmt.Errorf("%w: true_prob_draw is zero", models.ErrDivisionByZero)
	}

	values := make([]float64, 0, len(n.names))
	values = append(values,
		pHome,
		pDraw,
		pAway,
		inv-1,
		1/inv,
		pDraw/pAway,
		pHome/pDraw,
		math.Log(odds.Home)-math.Log(odds.Draw),
		math.Log(odds.Draw)-math.Log(odds.Away),
		populationStdDev(pHome, pDraw, pAway),
		entropy(pHome, pDraw, pAway),
	)

	for _, name := range AuxStatNames {
		v, ok := aux[name]
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			v = n.defaults[name]
		}
		values = append(values, v)
	}

	return NewFeatureVector(n.names, values), nil
}

// TrueProbabilities returns the margin-free implied probabilities.
func TrueProbabilities(odds models.OddsTriple) (models.ProbabilityDistribution, error) {
	if err := odds.Validate(); err != nil {
		return models.ProbabilityDistribution{}, err
	}
	inv := 1/odds.Home + 1/odds.Draw + 1/odds.Away
	return models.ProbabilityDistribution{
		Home: (1 / odds.Home) / inv,
		Draw: (1 / odds.Draw) / inv,
		Away: (1 / odds.Away) / inv,
	}, nil
}

func populationStdDev(values ...float64) float64 {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)))
}

func entropy(probs ...float64) float64 {
	h := 0.0
	for _, p := range probs {
		if p > 0 {
			h -= p * math.Log(p)
		}
	}
	return h
}
