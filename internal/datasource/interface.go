package datasource

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/keiba-advisor/internal/models"
)

// PredictionSource supplies model predictions and race metadata for a race id
type PredictionSource interface {
	// FetchPredictions retrieves the race context and per-horse predictions
	FetchPredictions(ctx context.Context, raceID string) (*RacePredictions, error)

	// Name returns the name of the source
	Name() string

	// IsEnabled returns whether the source can serve requests
	IsEnabled() bool
}

// RacePredictions is one race as delivered by a prediction source
type RacePredictions struct {
	Race        models.RaceContext       `json:"race"`
	Predictions []models.HorsePrediction `json:"predictions"`
}

// DataSourceError represents errors from prediction source operations
type DataSourceError struct {
	Source  string
	Code    string
	Message string
	Err     error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s (%v)", e.Source, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Source, e.Code, e.Message)
}

// Unwrap exposes the underlying error to errors.Is and errors.As
func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeDisabled             = "disabled"
)

var (
	// ErrCircuitOpen is returned while the HTTP client refuses requests after repeated failures
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
