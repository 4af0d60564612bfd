package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MTDzi/autonomous-knowledge-agent/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify udahub configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/udahub/config.yaml
Project-specific overrides can be placed in .udahub.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	// Mask API key if set
	apiKeyDisplay := "(not set)"
	if cfg.Anthropic.APIKey != "" {
		apiKeyDisplay = "****"
	}

	fmt.Printf("anthropic.api_key: %s\n", apiKeyDisplay)
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.use_aws_bedrock: %t\n", cfg.Anthropic.UseAWSBedrock)
	fmt.Printf("anthropic.aws_region: %s\n", cfg.Anthropic.AWSRegion)
	fmt.Printf("thresholds.classified: %g\n", cfg.Thresholds.Classified)
	fmt.Printf("thresholds.needs_tickets: %g\n", cfg.Thresholds.NeedsTickets)
	fmt.Printf("thresholds.needs_reservations: %g\n", cfg.Thresholds.NeedsReservations)
	fmt.Printf("thresholds.resolved: %g\n", cfg.Thresholds.Resolved)
	fmt.Printf("store.db_path: %s\n", cfg.Store.DBPath)
	fmt.Printf("defaults.account_id: %s\n", cfg.Defaults.AccountID)
	fmt.Printf("vocabulary.override_path: %s\n", cfg.Vocabulary.OverridePath)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		if cfg.Anthropic.APIKey == "" {
			return "(not set)", nil
		}
		return "****", nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "anthropic.use_aws_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseAWSBedrock), nil
	case "anthropic.aws_region":
		return cfg.Anthropic.AWSRegion, nil
	case "anthropic.aws_profile":
		return cfg.Anthropic.AWSProfile, nil
	case "thresholds.classified":
		return formatThreshold(cfg.Thresholds.Classified), nil
	case "thresholds.needs_tickets":
		return formatThreshold(cfg.Thresholds.NeedsTickets), nil
	case "thresholds.needs_reservations":
		return formatThreshold(cfg.Thresholds.NeedsReservations), nil
	case "thresholds.resolved":
		return formatThreshold(cfg.Thresholds.Resolved), nil
	case "store.db_path":
		return cfg.Store.DBPath, nil
	case "defaults.account_id":
		return cfg.Defaults.AccountID, nil
	case "vocabulary.override_path":
		return cfg.Vocabulary.OverridePath, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.use_aws_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for use_aws_bedrock: %w", err)
		}
		cfg.Anthropic.UseAWSBedrock = b
	case "anthropic.aws_region":
		cfg.Anthropic.AWSRegion = value
	case "anthropic.aws_profile":
		cfg.Anthropic.AWSProfile = value
	case "thresholds.classified":
		return setThreshold(&cfg.Thresholds.Classified, key, value)
	case "thresholds.needs_tickets":
		return setThreshold(&cfg.Thresholds.NeedsTickets, key, value)
	case "thresholds.needs_reservations":
		return setThreshold(&cfg.Thresholds.NeedsReservations, key, value)
	case "thresholds.resolved":
		return setThreshold(&cfg.Thresholds.Resolved, key, value)
	case "store.db_path":
		cfg.Store.DBPath = value
	case "defaults.account_id":
		cfg.Defaults.AccountID = value
	case "vocabulary.override_path":
		cfg.Vocabulary.OverridePath = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// setThreshold parses and validates a threshold value in [0, 100].
func setThreshold(target *float64, key, value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid number for %s: %w", key, err)
	}
	if f < 0 || f > 100 {
		return fmt.Errorf("%s must be within [0, 100], got %g", key, f)
	}
	*target = f
	return nil
}

// formatThreshold formats a threshold for display.
func formatThreshold(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
