package logger

import (
	"github.com/sirupsen/logrus"
)

// BacktestLogger provides dedicated logging for validation runs.
type BacktestLogger struct {
	*logrus.Entry
}

// NewBacktestLogger creates a new backtest logger.
func NewBacktestLogger(baseLogger *logrus.Logger, domain string) *BacktestLogger {
	return &BacktestLogger{
		Entry: baseLogger.WithFields(logrus.Fields{
			"component": "backtest",
			"domain":    domain,
		}),
	}
}

// LogSplit logs the chronological split of a dataset.
func (bl *BacktestLogger) LogSplit(total, training, holdout int, holdoutFraction float64) {
	bl.WithFields(logrus.Fields{
		"matches_total":    total,
		"matches_training": training,
		"matches_holdout":  holdout,
		"holdout_fraction": holdoutFraction,
	}).Info("Dataset split chronologically")
}

// LogSkippedMatch logs a match skipped for missing settlement odds.
func (bl *BacktestLogger) LogSkippedMatch(matchID, reason string) {
	bl.WithFields(logrus.Fields{
		"match_id": matchID,
		"reason":   reason,
	}).Warn("Match skipped")
}

// LogSimulation logs the result of a simulated holdout run.
func (bl *BacktestLogger) LogSimulation(considered, bets, skipped int, startingBankroll, finalBankroll float64) {
	bl.WithFields(logrus.Fields{
		"matches_considered": considered,
		"bets_placed":        bets,
		"matches_skipped":    skipped,
		"starting_bankroll":  startingBankroll,
		"final_bankroll":     finalBankroll,
	}).Info("Holdout simulation completed")
}

// LogVerdict logs a validation verdict.
func (bl *BacktestLogger) LogVerdict(passed bool, roi, hitRate float64, totalBets int, reasons []string) {
	entry := bl.WithFields(logrus.Fields{
		"passed":     passed,
		"roi":        roi,
		"hit_rate":   hitRate,
		"total_bets": totalBets,
		"reasons":    reasons,
	})
	if passed {
		entry.Info("Validation passed")
		return
	}
	entry.Warn("Validation failed")
}

// LogModelUnavailable logs a domain aborted for lack of a usable model.
func (bl *BacktestLogger) LogModelUnavailable(err error) {
	bl.WithError(err).Error("Model unavailable, domain run aborted")
}
