package models

import "testing"

func TestNewTicketState(t *testing.T) {
	s := NewTicketState("help", map[string]string{"channel": "email"}, "cultpass", "user-1")

	if s.TicketText != "help" {
		t.Errorf("TicketText = %q, want %q", s.TicketText, "help")
	}
	if s.AccountID != "cultpass" {
		t.Errorf("AccountID = %q, want %q", s.AccountID, "cultpass")
	}
	if s.ClassifiedScore != UnsetScore {
		t.Errorf("ClassifiedScore = %v, want unset sentinel", s.ClassifiedScore)
	}
	if s.NeedsTicketsScore != UnsetScore || s.NeedsReservationsScore != UnsetScore {
		t.Error("expected fetch scores to start unset")
	}
	if s.ResolvedScore != UnsetScore {
		t.Errorf("ResolvedScore = %v, want unset sentinel", s.ResolvedScore)
	}
	if s.Classified() {
		t.Error("fresh state should not report classified")
	}
}

func TestScoreValid(t *testing.T) {
	valid := []float64{UnsetScore, 0, 50, 100}
	for _, score := range valid {
		if !ScoreValid(score) {
			t.Errorf("ScoreValid(%v) = false, want true", score)
		}
	}

	invalid := []float64{-0.5, -2, 100.1, 1000}
	for _, score := range invalid {
		if ScoreValid(score) {
			t.Errorf("ScoreValid(%v) = true, want false", score)
		}
	}
}

func TestValidate(t *testing.T) {
	s := NewTicketState("help", nil, "cultpass", "")
	if !s.Validate() {
		t.Error("fresh state should validate")
	}

	s.ClassifiedScore = 150
	if s.Validate() {
		t.Error("out-of-range score should fail validation")
	}
}

func TestStepNameValid(t *testing.T) {
	for _, name := range []StepName{
		StepOrchestrator, StepClassifier, StepTicketFetcher, StepReservationFetcher,
		StepArticleFetcher, StepResolver, StepEscalator, StepMemoryUpdater, StepTerminate,
	} {
		if !name.Valid() {
			t.Errorf("expected %q to be valid", name)
		}
	}

	if StepName("bogus").Valid() {
		t.Error("expected unknown step name to be invalid")
	}
}
