// Package config provides configuration management for the Longshot service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix("LONGSHOT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields; a missing file is not an error.
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix("LONGSHOT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "longshot")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdown_seconds", 10)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("scheduler.roster_refresh_cron", "0 */6 * * *")
	v.SetDefault("scheduler.odds_refresh_cron", "*/30 * * * *")
	v.SetDefault("cache.ephemeral_ttl", "5m")
	v.SetDefault("cache.canonical_ttl", "6h")
	v.SetDefault("cache.stable_ttl", "720h")
	v.SetDefault("cache.absolute_tolerance_pct", 1.5)
	v.SetDefault("cache.relative_tolerance", 0.25)
	v.SetDefault("roster.base_url", "http://localhost:8090")
	v.SetDefault("roster.timeout", "30s")
	v.SetDefault("odds_feed.base_url", "https://api.the-odds-api.com")
	v.SetDefault("odds_feed.region", "us")
	v.SetDefault("odds_feed.timeout", "10s")
	v.SetDefault("odds_feed.cache_ttl", "15m")
	v.SetDefault("fallback.endpoint", "https://api.openai.com/v1")
	v.SetDefault("fallback.model", "gpt-4o-mini")
	v.SetDefault("fallback.timeout", "8s")
	v.SetDefault("fallback.max_tokens", 400)
	v.SetDefault("http.timeout", "10s")
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.retry_wait_min", "100ms")
	v.SetDefault("http.retry_wait_max", "5s")
	v.SetDefault("http.rate_limit", 5.0)
	v.SetDefault("http.circuit_breaker_max", 5)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// ReloadFromEnv reloads the configuration from the path named in
// LONGSHOT_CONFIG_PATH, if set.
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv("LONGSHOT_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}
	return nil
}
