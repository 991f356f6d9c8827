package datasource

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/keiba-advisor/internal/config"
)

// NewPredictionSourceFromConfig builds the HTTP prediction source described by cfg.
// A disabled source is still returned so callers get a uniform error on lookup.
func NewPredictionSourceFromConfig(cfg config.PredictionSourceConfig, logger *logrus.Logger) *HTTPPredictionSource {
	httpCfg := DefaultHTTPClientConfig()
	if cfg.TimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	httpCfg.MaxRetries = cfg.RetryAttempts
	httpCfg.RateLimit = cfg.RequestsPerSecond

	client := NewRateLimitedHTTPClient(httpCfg, logger)
	return NewHTTPPredictionSource(client, cfg.BaseURL, cfg.APIKey, cfg.Enabled && cfg.BaseURL != "", logger)
}
