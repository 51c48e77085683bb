package backtest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/odds-backtester/internal/models"
)

// Report is the full outcome of validating one domain
type Report struct {
	Record      models.VerdictRecord `json:"record" yaml:"record"`
	Summary     Summary              `json:"summary" yaml:"summary"`
	Warnings    []Warning            `json:"warnings" yaml:"warnings"`
	WalkForward *WalkForwardResult   `json:"walk_forward,omitempty" yaml:"walk_forward,omitempty"`
	MonteCarlo  *MonteCarloResult    `json:"monte_carlo,omitempty" yaml:"monte_carlo,omitempty"`
	Error       string               `json:"error,omitempty" yaml:"error,omitempty"`
}

// StatusFile is the document written for external consumers of verdicts
type StatusFile struct {
	GeneratedAt string   `json:"generated_at" yaml:"generated_at"`
	AllPassed   bool     `json:"all_passed" yaml:"all_passed"`
	Domains     []Report `json:"domains" yaml:"domains"`
}

// GenerateConsoleReport formats one domain report for terminal output
func GenerateConsoleReport(report Report) string {
	rec := report.Record
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation Report: %s (%s)\n", rec.Domain, rec.ModelVersion))
	builder.WriteString("================\n")
	if report.Error != "" {
		builder.WriteString(fmt.Sprintf("Error: %s\n", report.Error))
		return builder.String()
	}
	builder.WriteString(fmt.Sprintf("Verdict: %s\n", verdictLabel(rec.Passed)))
	builder.WriteString(fmt.Sprintf("Holdout Matches: %d\n", rec.HoldoutSize))
	builder.WriteString(fmt.Sprintf("Total Bets: %d\n", rec.TotalBets))
	builder.WriteString(fmt.Sprintf("ROI: %.2f%%\n", rec.ROI*100))
	builder.WriteString(fmt.Sprintf("Hit Rate: %.2f%%\n", rec.HitRate*100))
	builder.WriteString(fmt.Sprintf("Bankroll: %.2f -> %.2f\n", rec.StartingBankroll, rec.FinalBankroll))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f%%\n", report.Summary.MaxDrawdown*100))
	builder.WriteString(fmt.Sprintf("Profit Factor: %.2f\n", report.Summary.ProfitFactor))
	builder.WriteString(fmt.Sprintf("Longest Losing Streak: %d\n", report.Summary.LongestLosingStreak))
	if len(report.Warnings) > 0 {
		builder.WriteString(fmt.Sprintf("Skipped Matches: %d\n", len(report.Warnings)))
	}
	if report.WalkForward != nil {
		builder.WriteString(fmt.Sprintf("Walk-Forward Consistency (in-sample, fixed model): %.2f%% over %d folds\n",
			report.WalkForward.ConsistencyScore*100, len(report.WalkForward.Folds)))
	}
	if report.MonteCarlo != nil {
		builder.WriteString(fmt.Sprintf("Monte Carlo P(profit): %.2f%% (ROI p5 %.2f%%, p95 %.2f%%)\n",
			report.MonteCarlo.ProbabilityOfProfit*100, report.MonteCarlo.ROIP5*100, report.MonteCarlo.ROIP95*100))
	}
	for _, reason := range rec.Reasons {
		builder.WriteString(fmt.Sprintf("  - %s\n", reason))
	}
	return builder.String()
}

// WriteVerdictTable renders verdict records as a console table
func WriteVerdictTable(w io.Writer, records []models.VerdictRecord) {
	table := tablewriter.NewWriter(w)
	table.Header("Domain", "Model", "Run At", "Bets", "ROI", "Hit Rate", "Bankroll", "Verdict", "Reasons")

	for _, rec := range records {
		table.Append(
			rec.Domain,
			rec.ModelVersion,
			rec.RunAt.UTC().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", rec.TotalBets),
			fmt.Sprintf("%.2f%%", rec.ROI*100),
			fmt.Sprintf("%.2f%%", rec.HitRate*100),
			fmt.Sprintf("%.2f", rec.FinalBankroll),
			verdictLabel(rec.Passed),
			strings.Join(rec.Reasons, "; "),
		)
	}

	table.Render()
}

// WriteStatusFile writes the status document as YAML for .yaml/.yml paths
// and JSON otherwise
func WriteStatusFile(path string, status StatusFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(status)
	default:
		data, err = json.MarshalIndent(status, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode status file: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

func verdictLabel(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}
