package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. ODDS_BACKTESTER_POLICY_MIN_ODDS
const EnvPrefix = "ODDS_BACKTESTER"

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

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults is Load without requiring the file to exist
func LoadWithDefaults(configPath string) (*Config, error) {
	v := newViper()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	SetDefaults(v)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// SetDefaults registers every default of the configuration surface
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "odds-backtester")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)

	v.SetDefault("policy.confidence_threshold", 0.6)
	v.SetDefault("policy.min_odds", 1.5)

	v.SetDefault("staking.strategy", "flat")
	v.SetDefault("staking.flat_stake", 10.0)
	v.SetDefault("staking.kelly_fraction", 0.5)
	v.SetDefault("staking.max_bankroll_fraction", 0.05)

	v.SetDefault("backtest.holdout_fraction", 0.2)
	v.SetDefault("backtest.starting_bankroll", 1000.0)
	v.SetDefault("backtest.walk_forward_folds", 0)
	v.SetDefault("backtest.monte_carlo_iterations", 0)
	v.SetDefault("backtest.monte_carlo_seed", 42)

	v.SetDefault("validation.min_roi", 0.0)
	v.SetDefault("validation.min_hit_rate", 0.55)
	v.SetDefault("validation.min_bets", 5)

	v.SetDefault("classifier.mode", "snapshot")
	v.SetDefault("classifier.models_dir", "models")
	v.SetDefault("classifier.base_url", "")
	v.SetDefault("classifier.api_key", "")
	v.SetDefault("classifier.timeout_seconds", 10)
	v.SetDefault("classifier.retry_attempts", 3)
	v.SetDefault("classifier.rate_limit", 20.0)
	v.SetDefault("classifier.cache_ttl_seconds", 600)
	v.SetDefault("classifier.cache_max_size", 10000)

	v.SetDefault("storage.driver", "none")
	v.SetDefault("storage.sqlite_path", "data/verdicts.db")
	v.SetDefault("storage.status_file", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "odds_backtester")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 5)

	v.SetDefault("secrets.enabled", false)
	v.SetDefault("secrets.region", "eu-west-1")
	v.SetDefault("secrets.secret_name", "")

	v.SetDefault("metrics.textfile", "")
}
