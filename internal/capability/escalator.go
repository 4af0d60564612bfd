package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MTDzi/autonomous-knowledge-agent/internal/llm"
	"github.com/MTDzi/autonomous-knowledge-agent/pkg/models"
)

const escalatorSystemPrompt = `You are a support escalation agent. The automated
resolution for this ticket scored too low to ship, so the ticket is being handed to a
human agent. Summarize why the ticket needs escalation and assign an urgency level.`

// escalatorResult is the structured output of the escalation call.
type escalatorResult struct {
	EscalationReason string `json:"escalation_reason"`
	UrgencyLevel     string `json:"urgency_level"`
}

// Escalator prepares the hand-off for tickets the resolver could not settle.
// Reads ticket text, metadata, articles, and preference; writes the
// escalation reason and urgency level.
type Escalator struct {
	llm Structurer
}

// NewEscalator creates an escalator backed by the given model client.
func NewEscalator(structurer Structurer) *Escalator {
	return &Escalator{llm: structurer}
}

// Execute produces the escalation summary.
func (e *Escalator) Execute(ctx context.Context, state models.TicketState) (Result, error) {
	schema := llm.Schema{
		Name:        "record_escalation",
		Description: "Record why the ticket is being escalated.",
		Properties: map[string]interface{}{
			"escalation_reason": map[string]interface{}{
				"type":        "string",
				"description": "A brief explanation of why the ticket is being escalated.",
			},
			"urgency_level": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"high", "medium", "low"},
				"description": "The urgency level of the escalation.",
			},
		},
		Required: []string{"escalation_reason", "urgency_level"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Ticket:\n\n%s\n\n", state.TicketText)
	fmt.Fprintf(&b, "Metadata:\n%s\n\n", formatMetadata(state.TicketMetadata))
	if state.ResolutionText != "" {
		fmt.Fprintf(&b, "Rejected draft resolution (scored %.0f):\n%s\n\n", state.ResolvedScore, state.ResolutionText)
	}
	if state.UserPreference != "" {
		fmt.Fprintf(&b, "Saved user preference: %s\n\n", state.UserPreference)
	}
	fmt.Fprintf(&b, "Knowledge articles consulted:\n%s\n", formatRecords(state.RelevantArticles))

	raw, err := e.llm.Structured(ctx, escalatorSystemPrompt, b.String(), schema)
	if err != nil {
		return Result{}, fmt.Errorf("escalator: %w", err)
	}

	var result escalatorResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return Result{}, fmt.Errorf("escalator: decode result: %w", err)
	}

	return continueResult(models.Patch{
		EscalationReason: models.String(result.EscalationReason),
		UrgencyLevel:     models.String(result.UrgencyLevel),
	}), nil
}
