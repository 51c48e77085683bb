// Package config provides configuration management for the odds backtester.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Log        LogConfig        `mapstructure:"log"`
	Policy     PolicyConfig     `mapstructure:"policy" validate:"required"`
	Staking    StakingConfig    `mapstructure:"staking" validate:"required"`
	Backtest   BacktestConfig   `mapstructure:"backtest" validate:"required"`
	Validation ValidationConfig `mapstructure:"validation" validate:"required"`
	Features   FeaturesConfig   `mapstructure:"features"`
	Classifier ClassifierConfig `mapstructure:"classifier" validate:"required"`
	Domains    []DomainConfig   `mapstructure:"domains" validate:"required,min=1,dive"`
	Storage    StorageConfig    `mapstructure:"storage" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// LogConfig controls optional rotating file output
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}

// PolicyConfig holds the decision thresholds
type PolicyConfig struct {
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" validate:"gt=0,lte=1"`
	MinOdds             float64 `mapstructure:"min_odds" validate:"gte=1"`
}

// StakingConfig selects and parameterises the staker
type StakingConfig struct {
	Strategy            string  `mapstructure:"strategy" validate:"required,oneof=flat kelly"`
	FlatStake           float64 `mapstructure:"flat_stake" validate:"gt=0"`
	KellyFraction       float64 `mapstructure:"kelly_fraction" validate:"gt=0,lte=1"`
	MaxBankrollFraction float64 `mapstructure:"max_bankroll_fraction" validate:"gt=0,lte=1"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	HoldoutFraction      float64 `mapstructure:"holdout_fraction" validate:"gt=0,lt=1"`
	StartingBankroll     float64 `mapstructure:"starting_bankroll" validate:"gt=0"`
	WalkForwardFolds     int     `mapstructure:"walk_forward_folds" validate:"gte=0"`
	MonteCarloIterations int     `mapstructure:"monte_carlo_iterations" validate:"gte=0"`
	MonteCarloSeed       int64   `mapstructure:"monte_carlo_seed"`
}

// ValidationConfig holds the pass/fail thresholds of the validation gate
type ValidationConfig struct {
	MinROI     float64 `mapstructure:"min_roi"`
	MinHitRate float64 `mapstructure:"min_hit_rate" validate:"gte=0,lte=1"`
	MinBets    int     `mapstructure:"min_bets" validate:"gte=0"`
}

// FeaturesConfig overrides the normaliser's auxiliary defaults
type FeaturesConfig struct {
	AuxDefaults map[string]float64 `mapstructure:"aux_defaults"`
}

// ClassifierConfig selects where predictions come from
type ClassifierConfig struct {
	Mode            string  `mapstructure:"mode" validate:"required,oneof=snapshot http"`
	ModelsDir       string  `mapstructure:"models_dir"`
	BaseURL         string  `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey          string  `mapstructure:"api_key"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"gt=0"`
	RetryAttempts   int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimit       float64 `mapstructure:"rate_limit" validate:"gte=0"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	CacheMaxSize    int     `mapstructure:"cache_max_size" validate:"gte=0"`
}

// DomainConfig describes one league's dataset and expected model snapshot
type DomainConfig struct {
	ID            string   `mapstructure:"id" validate:"required"`
	DataFiles     []string `mapstructure:"data_files" validate:"required,min=1"`
	OddsPrefix    string   `mapstructure:"odds_prefix" validate:"required"`
	BettingPrefix string   `mapstructure:"betting_prefix"`
	Season        string   `mapstructure:"season"`
	ModelVersion  string   `mapstructure:"model_version"`

	// AuxColumns maps auxiliary stat names to CSV columns
	AuxColumns map[string]string `mapstructure:"aux_columns"`
}

// StorageConfig selects where verdicts are persisted
type StorageConfig struct {
	Driver     string `mapstructure:"driver" validate:"required,oneof=none sqlite postgres"`
	SQLitePath string `mapstructure:"sqlite_path"`
	StatusFile string `mapstructure:"status_file"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
}

// SecretsConfig enables the AWS Secrets Manager overlay
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Domain returns the configuration for a domain id
func (c *Config) Domain(id string) (DomainConfig, bool) {
	for _, d := range c.Domains {
		if d.ID == id {
			return d, true
		}
	}
	return DomainConfig{}, false
}

// DomainIDs lists configured domains in file order
func (c *Config) DomainIDs() []string {
	ids := make([]string, 0, len(c.Domains))
	for _, d := range c.Domains {
		ids = append(ids, d.ID)
	}
	return ids
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
