package llm

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Error("expected error when no API key is available")
	}
}

func TestNewClientDefaultsModel(t *testing.T) {
	client, err := NewClient(ClientConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.Model() != anthropic.ModelClaudeSonnet4_20250514 {
		t.Errorf("default model = %q", client.Model())
	}
}

func TestTranslateModelForBedrock(t *testing.T) {
	translated := translateModelForBedrock(anthropic.ModelClaudeSonnet4_20250514)
	if translated != "us.anthropic.claude-sonnet-4-20250514-v1:0" {
		t.Errorf("translated = %q", translated)
	}

	// Unknown models pass through unchanged.
	custom := anthropic.Model("custom-model")
	if got := translateModelForBedrock(custom); got != custom {
		t.Errorf("custom model translated to %q", got)
	}
}
