// Package metrics provides the Prometheus registry for validation runs.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "odds_backtester"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	DecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decisions_total",
		Help:      "Policy decisions by domain and selected outcome (none for no bet)",
	}, []string{"domain", "outcome"})
	BetsSettledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bets_settled_total",
		Help:      "Simulated bets settled by domain and result",
	}, []string{"domain", "result"})
	MatchesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_skipped_total",
		Help:      "Holdout matches skipped for unusable settlement odds",
	}, []string{"domain"})
)

// Gauge metrics
var (
	FinalBankroll = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "final_bankroll",
		Help:      "Bankroll at the end of the latest holdout simulation",
	}, []string{"domain"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(DecisionsTotal)
		registry.MustRegister(BetsSettledTotal)
		registry.MustRegister(MatchesSkippedTotal)

		registry.MustRegister(FinalBankroll)

		registry.MustRegister(ValidationRunsTotal)
		registry.MustRegister(ValidationROI)
		registry.MustRegister(ValidationHitRate)
		registry.MustRegister(BacktestDuration)

		registry.MustRegister(MLPredictionsTotal)
		registry.MustRegister(MLPredictionErrorsTotal)
		registry.MustRegister(MLPredictionLatency)
		registry.MustRegister(MLCacheHitRatio)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, GetRegistry())
}

// RecordDecision records a policy decision; outcome is "none" for no bet.
func RecordDecision(domain, outcome string) {
	DecisionsTotal.WithLabelValues(domain, outcome).Inc()
}

// RecordBetSettled records a settled simulated bet.
func RecordBetSettled(domain string, won bool) {
	result := "loss"
	if won {
		result = "win"
	}
	BetsSettledTotal.WithLabelValues(domain, result).Inc()
}

// RecordMatchSkipped records a match skipped for missing odds.
func RecordMatchSkipped(domain string) {
	MatchesSkippedTotal.WithLabelValues(domain).Inc()
}

// UpdateFinalBankroll sets the final bankroll gauge for a domain.
func UpdateFinalBankroll(domain string, amount float64) {
	FinalBankroll.WithLabelValues(domain).Set(amount)
}
