// Package config handles configuration loading for Fundamenta.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Universe  UniverseConfig  `mapstructure:"universe"  yaml:"universe"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"  yaml:"analysis"`
	Valuation ValuationConfig `mapstructure:"valuation" yaml:"valuation"`
	Fetch     FetchConfig     `mapstructure:"fetch"     yaml:"fetch"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// UniverseConfig lists the tickers analyzed by default.
type UniverseConfig struct {
	Tickers []string `mapstructure:"tickers" yaml:"tickers"`
}

// AnalysisConfig holds indicator engine settings.
type AnalysisConfig struct {
	WindowDays   int     `mapstructure:"window_days"    yaml:"window_days"`    // return observations per analysis
	RiskFreeRate float64 `mapstructure:"risk_free_rate" yaml:"risk_free_rate"` // decimal fallback when BCB is offline
}

// ValuationConfig holds fair-price model settings.
type ValuationConfig struct {
	BazinYield          float64 `mapstructure:"bazin_yield"          yaml:"bazin_yield"`          // minimum acceptable dividend yield
	DDMGrowth           float64 `mapstructure:"ddm_growth"           yaml:"ddm_growth"`           // perpetual dividend growth
	RiskPremium         float64 `mapstructure:"risk_premium"         yaml:"risk_premium"`         // added to the risk-free rate
	NormalizeDividends  bool    `mapstructure:"normalize_dividends"  yaml:"normalize_dividends"`  // cap extraordinary payouts
}

// FetchConfig holds data source settings.
type FetchConfig struct {
	CacheTTL          int `mapstructure:"cache_ttl"          yaml:"cache_ttl"` // seconds
	ConcurrentFetches int `mapstructure:"concurrent_fetches" yaml:"concurrent_fetches"`
	RetryAttempts     int `mapstructure:"retry_attempts"     yaml:"retry_attempts"`
	RetryBaseDelayMs  int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// DefaultUniverse covers the liquid core of the B3 market.
var DefaultUniverse = []string{
	"PETR4", "VALE3", "ITUB4", "BBDC4", "BBAS3",
	"ABEV3", "WEGE3", "B3SA3", "ITSA4", "RENT3",
	"SUZB3", "GGBR4", "ELET3", "PRIO3", "RADL3",
	"TAEE11", "BBSE3", "EGIE3", "CMIG4", "CPLE6",
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.fundamenta/config.yaml (home directory)
//  3. /etc/fundamenta/config.yaml (system)
//
// Environment variables override config file values.
// Format: FUNDAMENTA_<SECTION>_<KEY>, e.g., FUNDAMENTA_LOGGING_LEVEL
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".fundamenta"))
	v.AddConfigPath("/etc/fundamenta")

	v.SetEnvPrefix("FUNDAMENTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist).
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("FUNDAMENTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("universe.tickers", DefaultUniverse)

	// Analysis defaults: one trading year, SELIC-like fallback rate.
	v.SetDefault("analysis.window_days", 252)
	v.SetDefault("analysis.risk_free_rate", 0.1075)

	// Valuation defaults.
	v.SetDefault("valuation.bazin_yield", 0.06)
	v.SetDefault("valuation.ddm_growth", 0.03)
	v.SetDefault("valuation.risk_premium", 0.05)
	v.SetDefault("valuation.normalize_dividends", true)

	// Fetch defaults.
	v.SetDefault("fetch.cache_ttl", 300) // 5 minutes
	v.SetDefault("fetch.concurrent_fetches", 4)
	v.SetDefault("fetch.retry_attempts", 3)
	v.SetDefault("fetch.retry_base_delay_ms", 500)

	// Logging defaults.
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
