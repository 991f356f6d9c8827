package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/keiba-advisor/internal/models"
)

const predictionSourceName = "prediction_api"

// HTTPPredictionSource fetches predictions from the upstream model service
type HTTPPredictionSource struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Entry
}

// NewHTTPPredictionSource creates a client for GET {baseURL}/races/{race_id}/predictions
func NewHTTPPredictionSource(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) *HTTPPredictionSource {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &HTTPPredictionSource{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger.WithField("component", "prediction_source"),
	}
}

// FetchPredictions retrieves predictions for a race
func (c *HTTPPredictionSource) FetchPredictions(ctx context.Context, raceID string) (*RacePredictions, error) {
	if !c.enabled {
		return nil, NewDataSourceError(predictionSourceName, ErrCodeDisabled, "prediction source is disabled", models.ErrPredictionsUnavailable)
	}
	if strings.TrimSpace(raceID) == "" {
		return nil, fmt.Errorf("%w: race_id is required", models.ErrInvalidInput)
	}

	endpoint := fmt.Sprintf("%s/races/%s/predictions", c.baseURL, url.PathEscape(raceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewDataSourceError(predictionSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(predictionSourceName, ErrCodeNetworkError, "failed to fetch predictions", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, NewDataSourceError(predictionSourceName, ErrCodeNotFound, fmt.Sprintf("race %s not found", raceID), models.ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, NewDataSourceError(predictionSourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case http.StatusTooManyRequests:
		return nil, NewDataSourceError(predictionSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewDataSourceError(predictionSourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var payload RacePredictions
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewDataSourceError(predictionSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	if len(payload.Predictions) == 0 {
		return nil, NewDataSourceError(predictionSourceName, ErrCodeInvalidData, "response contains no predictions", nil)
	}
	if payload.Race.RaceID == "" {
		payload.Race.RaceID = raceID
	}

	c.logger.WithFields(logrus.Fields{
		"race_id": raceID,
		"horses":  len(payload.Predictions),
	}).Debug("Fetched predictions")

	return &payload, nil
}

// Name returns the data source name
func (c *HTTPPredictionSource) Name() string {
	return predictionSourceName
}

// IsEnabled returns whether this data source is enabled
func (c *HTTPPredictionSource) IsEnabled() bool {
	return c.enabled
}
