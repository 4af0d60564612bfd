package config

import (
	"os"
	"path/filepath"
	"testing"
)

// writeConfig writes a config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromPathDefaults(t *testing.T) {
	path := writeConfig(t, "defaults:\n  account_id: cultpass\n")

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	// Thresholds fall back to built-in defaults.
	if cfg.Thresholds.Classified != 70.0 {
		t.Errorf("Thresholds.Classified = %v, want 70", cfg.Thresholds.Classified)
	}
	if cfg.Thresholds.Resolved != 70.0 {
		t.Errorf("Thresholds.Resolved = %v, want 70", cfg.Thresholds.Resolved)
	}
	if cfg.Defaults.AccountID != "cultpass" {
		t.Errorf("Defaults.AccountID = %q, want cultpass", cfg.Defaults.AccountID)
	}
}

func TestLoadFromPathOverrides(t *testing.T) {
	path := writeConfig(t, `
thresholds:
  classified: 80
  needs_tickets: 65
  needs_reservations: 55
  resolved: 90
store:
  db_path: /tmp/test-udahub.db
anthropic:
  use_aws_bedrock: true
  aws_region: us-west-2
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Thresholds.Classified != 80 {
		t.Errorf("Thresholds.Classified = %v, want 80", cfg.Thresholds.Classified)
	}
	if cfg.Thresholds.NeedsTickets != 65 {
		t.Errorf("Thresholds.NeedsTickets = %v, want 65", cfg.Thresholds.NeedsTickets)
	}
	if cfg.Store.DBPath != "/tmp/test-udahub.db" {
		t.Errorf("Store.DBPath = %q", cfg.Store.DBPath)
	}
	if !cfg.Anthropic.UseAWSBedrock {
		t.Error("expected UseAWSBedrock to be true")
	}
	if cfg.Anthropic.AWSRegion != "us-west-2" {
		t.Errorf("AWSRegion = %q, want us-west-2", cfg.Anthropic.AWSRegion)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("UDAHUB_TEST_KEY", "sk-test-123")

	path := writeConfig(t, "anthropic:\n  api_key: ${UDAHUB_TEST_KEY}\n")

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Anthropic.APIKey != "sk-test-123" {
		t.Errorf("APIKey = %q, want expanded env value", cfg.Anthropic.APIKey)
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
