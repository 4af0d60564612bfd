package capability

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/MTDzi/autonomous-knowledge-agent/internal/llm"
	"github.com/MTDzi/autonomous-knowledge-agent/internal/tags"
	"github.com/MTDzi/autonomous-knowledge-agent/pkg/models"
)

// stubLLM returns canned JSON for every Structured call.
type stubLLM struct {
	response string
	err      error
	// lastSchema records the schema of the most recent call.
	lastSchema llm.Schema
}

func (s *stubLLM) Structured(ctx context.Context, systemPrompt, userPrompt string, schema llm.Schema) (json.RawMessage, error) {
	s.lastSchema = schema
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.response), nil
}

// stubVocabSource serves a fixed tag list for every account.
type stubVocabSource struct {
	tags []string
}

func (s *stubVocabSource) AvailableTags(accountID string) ([]string, error) {
	return s.tags, nil
}

func newTestVocab(tagList ...string) *tags.Cache {
	return tags.NewCache(&stubVocabSource{tags: tagList})
}

func testState() models.TicketState {
	return models.NewTicketState(
		"I need to change the location of my subscription.",
		map[string]string{"channel": "email", "priority": "high"},
		"cultpass",
		"user-1",
	)
}

func TestClassifierExecute(t *testing.T) {
	stub := &stubLLM{response: `{
		"is_ticket_classified_score": 85,
		"needs_info_about_previous_user_tickets_score": 20,
		"needs_info_about_reservations_score": 10,
		"tags": ["location", "travel"]
	}`}
	classifier := NewClassifier(stub, newTestVocab("location", "travel", "account"))

	result, err := classifier.Execute(context.Background(), testState())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Next != models.HintOrchestrator {
		t.Errorf("Next = %q, want orchestrator hint", result.Next)
	}
	if *result.Patch.ClassifiedScore != 85 {
		t.Errorf("ClassifiedScore = %v, want 85", *result.Patch.ClassifiedScore)
	}
	if len(result.Patch.Tags) != 2 {
		t.Errorf("Tags = %v, want 2 tags", result.Patch.Tags)
	}

	// The schema must expose the closed vocabulary to the model.
	if stub.lastSchema.Name != "classify_ticket" {
		t.Errorf("schema name = %q", stub.lastSchema.Name)
	}
}

func TestClassifierDropsUnknownTags(t *testing.T) {
	stub := &stubLLM{response: `{
		"is_ticket_classified_score": 85,
		"needs_info_about_previous_user_tickets_score": 0,
		"needs_info_about_reservations_score": 0,
		"tags": ["location", "nonexistent-tag"]
	}`}
	classifier := NewClassifier(stub, newTestVocab("location"))

	result, err := classifier.Execute(context.Background(), testState())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(result.Patch.Tags) != 1 || result.Patch.Tags[0] != "location" {
		t.Errorf("Tags = %v, want only in-vocabulary tags", result.Patch.Tags)
	}
}

func TestClassifierRejectsOutOfRangeScore(t *testing.T) {
	stub := &stubLLM{response: `{
		"is_ticket_classified_score": 150,
		"needs_info_about_previous_user_tickets_score": 0,
		"needs_info_about_reservations_score": 0,
		"tags": []
	}`}
	classifier := NewClassifier(stub, newTestVocab("location"))

	if _, err := classifier.Execute(context.Background(), testState()); err == nil {
		t.Error("expected error for out-of-range score")
	}
}

func TestClassifierPropagatesLLMError(t *testing.T) {
	stub := &stubLLM{err: errors.New("api down")}
	classifier := NewClassifier(stub, newTestVocab("location"))

	if _, err := classifier.Execute(context.Background(), testState()); err == nil {
		t.Error("expected error when model call fails")
	}
}

func TestResolverExecute(t *testing.T) {
	stub := &stubLLM{response: `{"resolution_text": "Here is how to update your settings.", "is_resolved_score": 92}`}
	resolver := NewResolver(stub)

	state := testState()
	state.Tags = []string{"location"}
	state.UserPreference = "Prefers short emails"

	result, err := resolver.Execute(context.Background(), state)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if *result.Patch.ResolutionText != "Here is how to update your settings." {
		t.Errorf("ResolutionText = %q", *result.Patch.ResolutionText)
	}
	if *result.Patch.ResolvedScore != 92 {
		t.Errorf("ResolvedScore = %v, want 92", *result.Patch.ResolvedScore)
	}
	if result.Next != models.HintOrchestrator {
		t.Errorf("Next = %q, want orchestrator hint", result.Next)
	}
}

func TestResolverRejectsOutOfRangeScore(t *testing.T) {
	stub := &stubLLM{response: `{"resolution_text": "x", "is_resolved_score": -5}`}
	resolver := NewResolver(stub)

	if _, err := resolver.Execute(context.Background(), testState()); err == nil {
		t.Error("expected error for out-of-range score")
	}
}

func TestEscalatorExecute(t *testing.T) {
	stub := &stubLLM{response: `{"escalation_reason": "Resolution quality too low.", "urgency_level": "high"}`}
	escalator := NewEscalator(stub)

	state := testState()
	state.ResolutionText = "draft"
	state.ResolvedScore = 40

	result, err := escalator.Execute(context.Background(), state)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if *result.Patch.EscalationReason != "Resolution quality too low." {
		t.Errorf("EscalationReason = %q", *result.Patch.EscalationReason)
	}
	if *result.Patch.UrgencyLevel != "high" {
		t.Errorf("UrgencyLevel = %q", *result.Patch.UrgencyLevel)
	}
}

func TestMemoryUpdaterExecute(t *testing.T) {
	stub := &stubLLM{response: `{"should_update_preference": true, "new_preference": "Prefers short emails"}`}
	updater := NewMemoryUpdater(stub)

	result, err := updater.Execute(context.Background(), testState())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !*result.Patch.ShouldUpdatePreference {
		t.Error("expected ShouldUpdatePreference = true")
	}
	if *result.Patch.NewPreference != "Prefers short emails" {
		t.Errorf("NewPreference = %q", *result.Patch.NewPreference)
	}
}

func TestMemoryUpdaterEmptyPreferenceClearsFlag(t *testing.T) {
	stub := &stubLLM{response: `{"should_update_preference": true, "new_preference": ""}`}
	updater := NewMemoryUpdater(stub)

	result, err := updater.Execute(context.Background(), testState())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if *result.Patch.ShouldUpdatePreference {
		t.Error("flag without preference text should be cleared")
	}
}
