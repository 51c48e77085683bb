package backtest

import (
	"fmt"
	"math"
	"sort"

	"github.com/yourusername/odds-backtester/internal/models"
)

// SortChronologically returns a copy of matches stably ordered by kickoff
func SortChronologically(matches []models.Match) []models.Match {
	sorted := make([]models.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Kickoff.Before(sorted[j].Kickoff)
	})
	return sorted
}

// ChronologicalSplit partitions matches into training and holdout so that no
// holdout match kicks off before any training match. The first
// floor(n*(1-holdoutFraction)) matches are training, the rest holdout.
func ChronologicalSplit(matches []models.Match, holdoutFraction float64) ([]models.Match, []models.Match, error) {
	if holdoutFraction <= 0 || holdoutFraction >= 1 {
		return nil, nil, fmt.Errorf("holdout fraction must be in (0,1), got %v", holdoutFraction)
	}

	sorted := SortChronologically(matches)
	if err := checkSeasonOrder(sorted); err != nil {
		return nil, nil, err
	}

	split := int(math.Floor(float64(len(sorted)) * (1 - holdoutFraction)))
	if err := checkBoundary(sorted, split); err != nil {
		return nil, nil, err
	}

	return sorted[:split], sorted[split:], nil
}

// checkBoundary rejects a split that separates matches sharing a kickoff
func checkBoundary(sorted []models.Match, split int) error {
	if split <= 0 || split >= len(sorted) {
		return nil
	}
	last, first := sorted[split-1], sorted[split]
	if last.Kickoff.Equal(first.Kickoff) {
		return fmt.Errorf("%w: matches %s and %s share kickoff %s across the split boundary",
			models.ErrAmbiguousOrdering, last.ID, first.ID, first.Kickoff.Format("2006-01-02 15:04"))
	}
	return nil
}

// checkSeasonOrder rejects season labels that contradict kickoff order
func checkSeasonOrder(sorted []models.Match) error {
	closed := make(map[string]bool)
	current := ""
	for _, m := range sorted {
		if m.Season == "" || m.Season == current {
			continue
		}
		if closed[m.Season] {
			return fmt.Errorf("%w: season %q of match %s resumes after season %q",
				models.ErrAmbiguousOrdering, m.Season, m.ID, current)
		}
		if current != "" {
			closed[current] = true
		}
		current = m.Season
	}
	return nil
}
