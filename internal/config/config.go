// Package config handles configuration loading for udahub.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for udahub.
type Config struct {
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Store      StoreConfig      `mapstructure:"store"`
	Defaults   DefaultsConfig   `mapstructure:"defaults"`
	Vocabulary VocabularyConfig `mapstructure:"vocabulary"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key. ANTHROPIC_API_KEY overrides it.
	APIKey string `mapstructure:"api_key"`
	// Model is the Claude model used by LLM-backed capabilities.
	Model string `mapstructure:"model"`
	// UseAWSBedrock routes calls through AWS Bedrock instead of the direct API.
	UseAWSBedrock bool `mapstructure:"use_aws_bedrock"`
	// AWSRegion is the Bedrock region (e.g. "us-west-2").
	AWSRegion string `mapstructure:"aws_region"`
	// AWSProfile is the optional AWS profile name.
	AWSProfile string `mapstructure:"aws_profile"`
}

// ThresholdsConfig holds the routing score thresholds, all in [0, 100].
type ThresholdsConfig struct {
	// Classified is the minimum classifier confidence before any
	// supplemental fetcher is considered.
	Classified float64 `mapstructure:"classified"`
	// NeedsTickets triggers the previous-ticket fetcher.
	NeedsTickets float64 `mapstructure:"needs_tickets"`
	// NeedsReservations triggers the reservation fetcher.
	NeedsReservations float64 `mapstructure:"needs_reservations"`
	// Resolved is the minimum resolver score below which the ticket escalates.
	Resolved float64 `mapstructure:"resolved"`
}

// StoreConfig holds durable storage settings.
type StoreConfig struct {
	// DBPath is the SQLite database file. UDAHUB_DB overrides it.
	DBPath string `mapstructure:"db_path"`
}

// DefaultsConfig holds default values for runs.
type DefaultsConfig struct {
	// AccountID is the account used when the caller does not supply one.
	AccountID string `mapstructure:"account_id"`
}

// VocabularyConfig holds tag vocabulary settings.
type VocabularyConfig struct {
	// OverridePath is an optional YAML file whose tag lists take precedence
	// over tags derived from the knowledge base. Watched for changes.
	OverridePath string `mapstructure:"override_path"`
}

// Load loads configuration from XDG paths, project overrides, and environment
// variables. Precedence (highest to lowest):
//  1. Environment variables (ANTHROPIC_API_KEY, UDAHUB_DB)
//  2. Project config (.udahub.yaml in the current directory or a parent)
//  3. User config (~/.config/udahub/config.yaml)
//  4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("store.db_path", "UDAHUB_DB")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_aws_bedrock", cfg.Anthropic.UseAWSBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("thresholds.classified", cfg.Thresholds.Classified)
	v.Set("thresholds.needs_tickets", cfg.Thresholds.NeedsTickets)
	v.Set("thresholds.needs_reservations", cfg.Thresholds.NeedsReservations)
	v.Set("thresholds.resolved", cfg.Thresholds.Resolved)
	v.Set("store.db_path", cfg.Store.DBPath)
	v.Set("defaults.account_id", cfg.Defaults.AccountID)
	v.Set("vocabulary.override_path", cfg.Vocabulary.OverridePath)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// setDefaults configures built-in default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.model", "")
	v.SetDefault("thresholds.classified", 70.0)
	v.SetDefault("thresholds.needs_tickets", 70.0)
	v.SetDefault("thresholds.needs_reservations", 70.0)
	v.SetDefault("thresholds.resolved", 70.0)
	v.SetDefault("store.db_path", defaultDBPath())
	v.SetDefault("defaults.account_id", "cultpass")
	v.SetDefault("vocabulary.override_path", "")
}

// defaultDBPath returns the XDG data path for the udahub database.
func defaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "udahub", "udahub.db")
}

// getUserConfigDir returns the XDG config directory for udahub.
func getUserConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "udahub")
}

// findProjectConfig walks up from the current directory looking for .udahub.yaml.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, ".udahub.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnv expands ${VAR} references in a config value.
func expandEnv(s string) string {
	return os.Expand(s, func(key string) string {
		return os.Getenv(key)
	})
}
