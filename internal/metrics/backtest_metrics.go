package metrics

import "github.com/prometheus/client_golang/prometheus"

// Validation counter vectors
var (
	ValidationRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_runs_total",
		Help:      "Total number of validation runs by domain and status",
	}, []string{"domain", "status"})
)

// Validation gauge vectors
var (
	ValidationROI = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "validation_roi",
		Help:      "Return on investment of the latest holdout run",
	}, []string{"domain"})
	ValidationHitRate = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "validation_hit_rate",
		Help:      "Hit rate of the latest holdout run",
	}, []string{"domain"})
)

// Backtest histogram vectors
var (
	BacktestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of per-domain validation runs in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	}, []string{"domain"})
)

// RecordValidationRun records a validation run.
// status should be one of: "passed", "failed", "error", "model_unavailable"
func RecordValidationRun(domain, status string, durationSeconds float64) {
	ValidationRunsTotal.WithLabelValues(domain, status).Inc()
	BacktestDuration.WithLabelValues(domain).Observe(durationSeconds)
}

// UpdateVerdict sets the latest ROI and hit rate gauges.
func UpdateVerdict(domain string, roi, hitRate float64) {
	ValidationROI.WithLabelValues(domain).Set(roi)
	ValidationHitRate.WithLabelValues(domain).Set(hitRate)
}
