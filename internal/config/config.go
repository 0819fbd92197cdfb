// Package config provides configuration management for the Longshot service.
package config

import (
	"fmt"

	"github.com/yourusername/longshot/internal/cache"
	"github.com/yourusername/longshot/internal/fallback"
	"github.com/yourusername/longshot/internal/oddsfeed"
	"github.com/yourusername/longshot/internal/provider"
	"github.com/yourusername/longshot/internal/roster"
	"github.com/yourusername/longshot/internal/store"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig                 `mapstructure:"app" validate:"required"`
	Server      ServerConfig              `mapstructure:"server"`
	Database    store.Config              `mapstructure:"database"`
	Roster      roster.ProviderConfig     `mapstructure:"roster" validate:"required"`
	OddsFeed    oddsfeed.Config           `mapstructure:"odds_feed"`
	Fallback    fallback.Config           `mapstructure:"fallback"`
	Cache       cache.Config              `mapstructure:"cache"`
	HTTP        provider.HTTPClientConfig `mapstructure:"http"`
	Calibration CalibrationConfig         `mapstructure:"calibration"`
	Scheduler   SchedulerConfig           `mapstructure:"scheduler"`
	Metrics     MetricsConfig             `mapstructure:"metrics"`
	Features    FeaturesConfig            `mapstructure:"features"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig configures the estimation HTTP API
type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ShutdownSeconds int    `mapstructure:"shutdown_seconds" validate:"omitempty,gt=0"`
}

// CalibrationConfig locates the calibration bundle file. An empty path
// falls back to the built-in defaults.
type CalibrationConfig struct {
	Path string `mapstructure:"path"`
}

// SchedulerConfig holds the background refresh cron expressions
type SchedulerConfig struct {
	RosterRefreshCron string `mapstructure:"roster_refresh_cron" validate:"required,cronexpr"`
	OddsRefreshCron   string `mapstructure:"odds_refresh_cron" validate:"required,cronexpr"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// FeaturesConfig represents feature flags
type FeaturesConfig struct {
	StablePersistenceEnabled bool `mapstructure:"stable_persistence_enabled"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
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
