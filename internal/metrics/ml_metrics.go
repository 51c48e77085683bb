package metrics

import "github.com/prometheus/client_golang/prometheus"

// Classifier counter vectors
var (
	MLPredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ml_predictions_total",
		Help:      "Total number of classifier predictions made",
	}, []string{"domain", "cache_hit"})
	MLPredictionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ml_prediction_errors_total",
		Help:      "Total number of failed classifier predictions",
	}, []string{"domain", "error_type"})
)

// Classifier histogram vectors
var (
	MLPredictionLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ml_prediction_latency_seconds",
		Help:      "Latency of classifier predictions",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 2.5},
	}, []string{"domain", "backend"})
)

// Classifier gauge vectors
var (
	MLCacheHitRatio = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ml_cache_hit_ratio",
		Help:      "Prediction cache hit ratio per domain",
	}, []string{"domain"})
)

// RecordPrediction counts a served prediction
func RecordPrediction(domain string, cacheHit bool) {
	hit := "false"
	if cacheHit {
		hit = "true"
	}
	MLPredictionsTotal.WithLabelValues(domain, hit).Inc()
}

// RecordPredictionError counts a failed prediction by error type
func RecordPredictionError(domain, errorType string) {
	MLPredictionErrorsTotal.WithLabelValues(domain, errorType).Inc()
}

// ObservePredictionLatency records how long a backend took to answer
func ObservePredictionLatency(domain, backend string, seconds float64) {
	MLPredictionLatency.WithLabelValues(domain, backend).Observe(seconds)
}

// UpdateCacheHitRatio sets a domain's prediction cache hit ratio
func UpdateCacheHitRatio(domain string, ratio float64) {
	MLCacheHitRatio.WithLabelValues(domain).Set(ratio)
}
