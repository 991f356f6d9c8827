package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix namespaces every environment override, e.g. KEIBA_ADVISOR_STRATEGY_RISK_MODE
	EnvPrefix = "KEIBA_ADVISOR"

	defaultConfigPath = "config/config.yaml"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// setDefaults registers every optional key so environment overrides bind even without a file
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "keiba-advisor")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("strategy.default_bankroll", 100000)
	v.SetDefault("strategy.risk_mode", "balanced")
	v.SetDefault("strategy.use_kelly", true)
	v.SetDefault("strategy.dynamic_unit", true)
	v.SetDefault("strategy.min_expected_value", 1.2)
	v.SetDefault("strategy.single_top_n", 3)
	v.SetDefault("strategy.combination_top_n", 5)
	v.SetDefault("strategy.exacta_limit", 20)
	v.SetDefault("strategy.trifecta_exact_limit", 30)
	v.SetDefault("strategy.exacta_discount", 0.5)
	v.SetDefault("strategy.trifecta_exact_discount", 0.3)
	v.SetDefault("strategy.kelly_fraction", 0.25)
	v.SetDefault("strategy.kelly_cap", 0.05)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.request_timeout_seconds", 30)

	v.SetDefault("prediction_source.enabled", false)
	v.SetDefault("prediction_source.base_url", "")
	v.SetDefault("prediction_source.api_key", "")
	v.SetDefault("prediction_source.timeout_seconds", 10)
	v.SetDefault("prediction_source.retry_attempts", 3)
	v.SetDefault("prediction_source.requests_per_second", 5)

	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("cache.max_size", 1000)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "keiba_advisor")
	v.SetDefault("database.user", "keiba")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.ledger_refresh_cron", "*/5 * * * *")

	v.SetDefault("secrets.aws_region", "")
	v.SetDefault("secrets.secret_name", "")
}

// readExpanded loads a YAML file after expanding ${VAR} placeholders
func readExpanded(v *viper.Viper, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}
	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Load reads the configuration file and environment variables. The file must exist.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)
	if err := readExpanded(v, configPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// LoadWithDefaults behaves like Load but tolerates a missing file
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)
	if err := readExpanded(v, configPath); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// ReloadFromEnv replaces cfg with the file named by KEIBA_ADVISOR_CONFIG_PATH, if set
func ReloadFromEnv(cfg *Config) error {
	envPath := os.Getenv(EnvPrefix + "_CONFIG_PATH")
	if envPath == "" {
		return nil
	}
	newCfg, err := Load(envPath)
	if err != nil {
		return err
	}
	*cfg = *newCfg
	return nil
}
