package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/odds-backtester/internal/models"
)

func newRecord(domain string, runAt time.Time, passed bool) *models.VerdictRecord {
	rec := &models.VerdictRecord{
		ID:               uuid.New(),
		Domain:           domain,
		ModelVersion:     "v1",
		RunAt:            runAt,
		HoldoutSize:      76,
		StartingBankroll: 1000,
		FinalBankroll:    1030,
		ConfigHash:       "abc123",
		Passed:           passed,
		ROI:              0.2,
		HitRate:          0.6,
		TotalBets:        15,
		Reasons:          []string{},
		Ledger:           json.RawMessage(`[{"match_id":"m01","stake":10}]`),
	}
	if !passed {
		rec.Reasons = []string{"roi -0.1000 not above minimum 0.0000", "total_bets 3 below minimum 5"}
	}
	return rec
}
