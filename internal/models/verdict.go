package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ValidationVerdict is the pass/fail outcome of a holdout evaluation.
type ValidationVerdict struct {
	Passed    bool     `json:"passed" yaml:"passed"`
	ROI       float64  `json:"roi" yaml:"roi"`
	HitRate   float64  `json:"hit_rate" yaml:"hit_rate"`
	TotalBets int      `json:"total_bets" yaml:"total_bets"`
	Reasons   []string `json:"reasons" yaml:"reasons"`
}

// VerdictRecord is a persisted validation run for one domain.
type VerdictRecord struct {
	ID               uuid.UUID       `db:"id" json:"id" yaml:"id"`
	Domain           string          `db:"domain" json:"domain" yaml:"domain"`
	ModelVersion     string          `db:"model_version" json:"model_version" yaml:"model_version"`
	RunAt            time.Time       `db:"run_at" json:"run_at" yaml:"run_at"`
	HoldoutSize      int             `db:"holdout_size" json:"holdout_size" yaml:"holdout_size"`
	StartingBankroll float64         `db:"starting_bankroll" json:"starting_bankroll" yaml:"starting_bankroll"`
	FinalBankroll    float64         `db:"final_bankroll" json:"final_bankroll" yaml:"final_bankroll"`
	ConfigHash       string          `db:"config_hash" json:"config_hash" yaml:"config_hash"`
	Passed           bool            `db:"passed" json:"passed" yaml:"passed"`
	ROI              float64         `db:"roi" json:"roi" yaml:"roi"`
	HitRate          float64         `db:"hit_rate" json:"hit_rate" yaml:"hit_rate"`
	TotalBets        int             `db:"total_bets" json:"total_bets" yaml:"total_bets"`
	Reasons          []string        `db:"reasons" json:"reasons" yaml:"reasons"`
	Ledger           json.RawMessage `db:"ledger" json:"ledger,omitempty" yaml:"-"`
}

// Verdict returns the embedded validation verdict.
func (r *VerdictRecord) Verdict() ValidationVerdict {
	return ValidationVerdict{
		Passed:    r.Passed,
		ROI:       r.ROI,
		HitRate:   r.HitRate,
		TotalBets: r.TotalBets,
		Reasons:   r.Reasons,
	}
}
