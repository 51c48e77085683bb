package backtest

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yourusername/odds-backtester/internal/models"
)

// ReasonNoQualifyingBets is the sole reason reported for an empty ledger
const ReasonNoQualifyingBets = "no qualifying bets"

// Thresholds are the validation gate's pass criteria
type Thresholds struct {
	MinROI     float64 `json:"min_roi"`
	MinHitRate float64 `json:"min_hit_rate"`
	MinBets    int     `json:"min_bets"`
}

// DefaultThresholds returns min_roi=0, min_hit_rate=0.55, min_bets=5
func DefaultThresholds() Thresholds {
	return Thresholds{MinROI: 0, MinHitRate: 0.55, MinBets: 5}
}

// Evaluate turns a ledger into a verdict. Every failing criterion is reported.
func Evaluate(ledger []models.LedgerEntry, th Thresholds) models.ValidationVerdict {
	totalBets := 0
	correct := 0
	staked := decimal.Zero
	profit := decimal.Zero

	for _, e := range ledger {
		if e.Stake <= 0 {
			continue
		}
		totalBets++
		if e.OutcomeCorrect {
			correct++
		}
		staked = staked.Add(decimal.NewFromFloat(e.Stake))
		profit = profit.Add(decimal.NewFromFloat(e.Profit))
	}

	if totalBets == 0 {
		return models.ValidationVerdict{
			Passed:  false,
			Reasons: []string{ReasonNoQualifyingBets},
		}
	}

	roi := profit.Div(staked).InexactFloat64()
	hitRate := float64(correct) / float64(totalBets)

	reasons := []string{}
	if !(roi > th.MinROI) {
		reasons = append(reasons, fmt.Sprintf("roi %.4f not above minimum %.4f", roi, th.MinROI))
	}
	if !(hitRate > th.MinHitRate) {
		reasons = append(reasons, fmt.Sprintf("hit_rate %.4f not above minimum %.4f", hitRate, th.MinHitRate))
	}
	if totalBets < th.MinBets {
		reasons = append(reasons, fmt.Sprintf("total_bets %d below minimum %d", totalBets, th.MinBets))
	}

	return models.ValidationVerdict{
		Passed:    len(reasons) == 0,
		ROI:       roi,
		HitRate:   hitRate,
		TotalBets: totalBets,
		Reasons:   reasons,
	}
}
