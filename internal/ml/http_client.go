package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/odds-backtester/internal/config"
	"github.com/yourusername/odds-backtester/internal/features"
	"github.com/yourusername/odds-backtester/internal/metrics"
	"github.com/yourusername/odds-backtester/internal/models"
)

// PredictRequest is the payload sent to the model service
type PredictRequest struct {
	ModelVersion string             `json:"model_version"`
	Features     map[string]float64 `json:"features"`
	FeatureOrder []string           `json:"feature_order"`
}

// PredictResponse is the model service reply
type PredictResponse struct {
	Domain        string                         `json:"domain"`
	ModelVersion  string                         `json:"model_version"`
	Probabilities models.ProbabilityDistribution `json:"probabilities"`
}

// HTTPClassifier calls a remote model service pinned to one domain and version.
type HTTPClassifier struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
	domain  string
	version string
	logger  *logrus.Logger
}

// NewHTTPClassifier creates a classifier backed by the model service
func NewHTTPClassifier(cfg *config.ClassifierConfig, domain, version string, logger *logrus.Logger) (*HTTPClassifier, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("classifier base_url is required")
	}
	if domain == "" || version == "" {
		return nil, fmt.Errorf("domain and model version are required")
	}
	if logger == nil {
		logger = logrus.New()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	retryClient.RetryMax = cfg.RetryAttempts
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = retryLogger{entry: logger.WithField("component", "classifier_http")}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &HTTPClassifier{
		client:  retryClient,
		limiter: rate.NewLimiter(limit, 1),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		domain:  domain,
		version: version,
		logger:  logger,
	}, nil
}

// Domain returns the domain this client is pinned to
func (c *HTTPClassifier) Domain() string { return c.domain }

// Version returns the expected model version
func (c *HTTPClassifier) Version() string { return c.version }

// Predict requests a probability distribution from the model service
func (c *HTTPClassifier) Predict(ctx context.Context, fv features.FeatureVector) (models.ProbabilityDistribution, error) {
	start := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		return models.ProbabilityDistribution{}, fmt.Errorf("rate limiter error: %w", err)
	}

	body, err := json.Marshal(PredictRequest{
		ModelVersion: c.version,
		Features:     fv.Map(),
		FeatureOrder: fv.Names(),
	})
	if err != nil {
		return models.ProbabilityDistribution{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/models/%s/predict", c.baseURL, url.PathEscape(c.domain))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return models.ProbabilityDistribution{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordPredictionError(c.domain, "network")
		return models.ProbabilityDistribution{}, fmt.Errorf("%w: %v", ErrMLServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		metrics.RecordPredictionError(c.domain, "not_found")
		return models.ProbabilityDistribution{}, fmt.Errorf("%w: service has no model for domain %q", models.ErrModelUnavailable, c.domain)
	case resp.StatusCode != http.StatusOK:
		respBody, _ := io.ReadAll(resp.Body)
		metrics.RecordPredictionError(c.domain, "http_error")
		return models.ProbabilityDistribution{}, fmt.Errorf("%w: status %d: %s", ErrMLServiceUnavailable, resp.StatusCode, string(respBody))
	}

	var predResp PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&predResp); err != nil {
		return models.ProbabilityDistribution{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if predResp.ModelVersion != c.version {
		metrics.RecordPredictionError(c.domain, "version_mismatch")
		return models.ProbabilityDistribution{}, fmt.Errorf("%w: service returned version %q, expected %q",
			models.ErrModelUnavailable, predResp.ModelVersion, c.version)
	}
	if predResp.Domain != "" && predResp.Domain != c.domain {
		metrics.RecordPredictionError(c.domain, "domain_mismatch")
		return models.ProbabilityDistribution{}, fmt.Errorf("%w: service answered for domain %q",
			models.ErrModelUnavailable, predResp.Domain)
	}
	if err := predResp.Probabilities.Validate(); err != nil {
		return models.ProbabilityDistribution{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	metrics.ObservePredictionLatency(c.domain, "http", time.Since(start).Seconds())
	metrics.RecordPrediction(c.domain, false)

	return predResp.Probabilities, nil
}

// retryLogger adapts logrus to retryablehttp.LeveledLogger
type retryLogger struct {
	entry *logrus.Entry
}

func (l retryLogger) fields(keysAndValues []interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return l.entry.WithFields(fields)
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Error(msg)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug(msg)
}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug(msg)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Warn(msg)
}
