package backtest

import (
	"math"

	"github.com/yourusername/odds-backtester/internal/models"
)

// Summary holds descriptive ledger statistics reported next to a verdict.
// None of these feed the pass/fail rule.
type Summary struct {
	TotalBets           int     `json:"total_bets" yaml:"total_bets"`
	WinningBets         int     `json:"winning_bets" yaml:"winning_bets"`
	LosingBets          int     `json:"losing_bets" yaml:"losing_bets"`
	TotalStaked         float64 `json:"total_staked" yaml:"total_staked"`
	NetProfit           float64 `json:"net_profit" yaml:"net_profit"`
	AverageOdds         float64 `json:"average_odds" yaml:"average_odds"`
	AverageWin          float64 `json:"average_win" yaml:"average_win"`
	AverageLoss         float64 `json:"average_loss" yaml:"average_loss"`
	LargestWin          float64 `json:"largest_win" yaml:"largest_win"`
	LargestLoss         float64 `json:"largest_loss" yaml:"largest_loss"`
	ProfitFactor        float64 `json:"profit_factor" yaml:"profit_factor"`
	Expectancy          float64 `json:"expectancy" yaml:"expectancy"`
	MaxDrawdown         float64 `json:"max_drawdown" yaml:"max_drawdown"`
	LongestLosingStreak int     `json:"longest_losing_streak" yaml:"longest_losing_streak"`
}

// SummarizeLedger calculates ledger statistics
func SummarizeLedger(ledger []models.LedgerEntry, curve EquityCurve) Summary {
	s := Summary{MaxDrawdown: curve.MaxDrawdown()}

	grossProfit := 0.0
	grossLoss := 0.0
	oddsSum := 0.0
	streak := 0

	for _, e := range ledger {
		if e.Stake <= 0 {
			continue
		}
		s.TotalBets++
		s.TotalStaked += e.Stake
		s.NetProfit += e.Profit
		oddsSum += e.SelectedOdds

		if e.OutcomeCorrect {
			s.WinningBets++
			grossProfit += e.Profit
			s.LargestWin = math.Max(s.LargestWin, e.Profit)
			streak = 0
			continue
		}
		s.LosingBets++
		grossLoss += math.Abs(e.Profit)
		s.LargestLoss = math.Min(s.LargestLoss, e.Profit)
		streak++
		if streak > s.LongestLosingStreak {
			s.LongestLosingStreak = streak
		}
	}

	if s.TotalBets == 0 {
		return s
	}

	s.AverageOdds = oddsSum / float64(s.TotalBets)
	s.Expectancy = s.NetProfit / float64(s.TotalBets)
	if s.WinningBets > 0 {
		s.AverageWin = grossProfit / float64(s.WinningBets)
	}
	if s.LosingBets > 0 {
		s.AverageLoss = -grossLoss / float64(s.LosingBets)
	}
	s.ProfitFactor = profitFactor(grossProfit, grossLoss)
	return s
}

func profitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		if grossProfit > 0 {
			return 999
		}
		return 0
	}
	return grossProfit / grossLoss
}
