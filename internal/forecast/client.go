// Package forecast talks to the external demand predictor. The predictor
// is advisory: every failure degrades to an empty prediction so the
// trading loop never blocks on it.
package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rxtech-lab/watt-broker/internal/config"
	"github.com/rxtech-lab/watt-broker/internal/logger"
	"github.com/rxtech-lab/watt-broker/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Prediction is the predictor's per-slot demand estimate. The zero value
// is the empty prediction.
type Prediction struct {
	Values []float64 `json:"prediction"`
}

// IsEmpty reports whether the predictor returned nothing usable.
func (p Prediction) IsEmpty() bool {
	return len(p.Values) == 0
}

// Forecaster produces demand predictions from a feature vector.
type Forecaster interface {
	Predict(ctx context.Context, features []float64) (Prediction, error)
}

// predictRequest matches the predictor's expected body: a batch with a
// single feature row.
type predictRequest struct {
	Data [][]float64 `json:"data"`
}

// HTTPForecaster calls a REST predictor endpoint, rate limited so a busy
// session cannot flood it.
type HTTPForecaster struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	logger  *logger.Logger
}

// NewHTTPForecaster creates a client from configuration.
func NewHTTPForecaster(cfg config.ForecastConfig, log *logger.Logger) *HTTPForecaster {
	return &HTTPForecaster{
		url: cfg.URL,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		logger:  log,
	}
}

// Predict posts the feature vector and decodes the prediction. Returns
// the empty prediction alongside the error; callers log and move on.
func (f *HTTPForecaster) Predict(ctx context.Context, features []float64) (Prediction, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return Prediction{}, errors.Wrap(errors.ErrCodeForecastUnavailable, "rate limiter wait aborted", err)
	}

	body, err := json.Marshal(predictRequest{Data: [][]float64{features}})
	if err != nil {
		return Prediction{}, errors.Wrap(errors.ErrCodeForecastMalformed, "failed to encode feature vector", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return Prediction{}, errors.Wrap(errors.ErrCodeForecastUnavailable, "failed to build predictor request", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return Prediction{}, errors.Wrap(errors.ErrCodeForecastUnavailable, "predictor request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Prediction{}, errors.Newf(errors.ErrCodeForecastUnavailable,
			"predictor returned status %d", resp.StatusCode)
	}

	var prediction Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return Prediction{}, errors.Wrap(errors.ErrCodeForecastMalformed, "failed to decode prediction", err)
	}

	f.logger.Debug("prediction received", zap.Int("values", len(prediction.Values)))

	return prediction, nil
}
