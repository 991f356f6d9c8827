// Package config provides configuration management for the keiba advisor.
package config

import (
	"fmt"
	"time"

	"github.com/yourusername/keiba-advisor/internal/models"
	"github.com/yourusername/keiba-advisor/internal/strategy"
)

// Config represents the complete application configuration
type Config struct {
	App              AppConfig              `mapstructure:"app" validate:"required"`
	Strategy         StrategyConfig         `mapstructure:"strategy" validate:"required"`
	Server           ServerConfig           `mapstructure:"server" validate:"required"`
	PredictionSource PredictionSourceConfig `mapstructure:"prediction_source"`
	Cache            CacheConfig            `mapstructure:"cache" validate:"required"`
	Database         DatabaseConfig         `mapstructure:"database"`
	Metrics          MetricsConfig          `mapstructure:"metrics" validate:"required"`
	Scheduler        SchedulerConfig        `mapstructure:"scheduler"`
	Secrets          SecretsConfig          `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// StrategyConfig holds the default staking profile and the candidate generation limits
type StrategyConfig struct {
	DefaultBankroll       float64 `mapstructure:"default_bankroll" validate:"required,gt=0"`
	RiskMode              string  `mapstructure:"risk_mode" validate:"required,riskmode"`
	UseKelly              bool    `mapstructure:"use_kelly"`
	DynamicUnit           bool    `mapstructure:"dynamic_unit"`
	MinExpectedValue      float64 `mapstructure:"min_expected_value" validate:"gte=0"`
	SingleTopN            int     `mapstructure:"single_top_n" validate:"required,gt=0"`
	CombinationTopN       int     `mapstructure:"combination_top_n" validate:"required,gte=3"`
	ExactaLimit           int     `mapstructure:"exacta_limit" validate:"required,gt=0"`
	TrifectaExactLimit    int     `mapstructure:"trifecta_exact_limit" validate:"required,gt=0"`
	ExactaDiscount        float64 `mapstructure:"exacta_discount" validate:"required,gt=0,lte=1"`
	TrifectaExactDiscount float64 `mapstructure:"trifecta_exact_discount" validate:"required,gt=0,lte=1"`
	KellyFraction         float64 `mapstructure:"kelly_fraction" validate:"required,gt=0,lte=1"`
	KellyCap              float64 `mapstructure:"kelly_cap" validate:"required,gt=0,lte=0.05"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Port                  int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins        []string `mapstructure:"allowed_origins"`
	RequestTimeoutSeconds int      `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
}

// PredictionSourceConfig represents the upstream prediction service
type PredictionSourceConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	BaseURL           string  `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey            string  `mapstructure:"api_key"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	RetryAttempts     int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
}

// CacheConfig represents the in-process recommendation cache
type CacheConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds" validate:"required,gt=0"`
	MaxSize    int `mapstructure:"max_size" validate:"required,gt=0"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"gte=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig represents background job schedules
type SchedulerConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	LedgerRefreshCron string `mapstructure:"ledger_refresh_cron"`
}

// SecretsConfig points at an optional AWS Secrets Manager secret
type SecretsConfig struct {
	AWSRegion  string `mapstructure:"aws_region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// RequestTimeout returns the per-request deadline of the HTTP API
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// CacheTTL returns how long a computed recommendation stays cached
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// Engine converts the strategy section into engine tunables
func (s StrategyConfig) Engine() strategy.EngineConfig {
	cfg := strategy.DefaultEngineConfig()
	cfg.Generator = strategy.GeneratorConfig{
		SingleTopN:            s.SingleTopN,
		ComboTopN:             s.CombinationTopN,
		ExactaLimit:           s.ExactaLimit,
		TrifectaExactLimit:    s.TrifectaExactLimit,
		ExactaOrderDiscount:   s.ExactaDiscount,
		TrifectaOrderDiscount: s.TrifectaExactDiscount,
	}
	cfg.KellyFraction = s.KellyFraction
	cfg.KellyCap = s.KellyCap
	return cfg
}

// Defaults returns the per-request staking preferences used when a caller omits them
func (s StrategyConfig) Defaults() models.StrategyConfig {
	return models.StrategyConfig{
		Bankroll:         s.DefaultBankroll,
		RiskMode:         models.RiskMode(s.RiskMode),
		UseKelly:         s.UseKelly,
		DynamicUnit:      s.DynamicUnit,
		MinExpectedValue: s.MinExpectedValue,
	}
}
