package capability

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MTDzi/autonomous-knowledge-agent/internal/llm"
	"github.com/MTDzi/autonomous-knowledge-agent/pkg/models"
)

const memoryUpdaterSystemPrompt = `You are a long-term memory manager. Analyze a support
interaction and decide if there is information worth saving for future visits.

Focus on:
1. User preferences (e.g., tone, technical level).
2. Recurring issues.
3. Successful resolutions for complex problems.`

// memoryResult is the structured output of the memory-update call.
type memoryResult struct {
	ShouldUpdatePreference bool   `json:"should_update_preference"`
	NewPreference          string `json:"new_preference"`
}

// MemoryUpdater decides whether the interaction revealed a preference worth
// saving. Reads ticket text, resolution text, and escalation reason; writes
// the should-update flag and the new preference text. The durable write to
// the preference cache is performed by the engine, not here, so a failed
// run never leaves a half-applied cache update.
type MemoryUpdater struct {
	llm Structurer
}

// NewMemoryUpdater creates a memory updater backed by the given model client.
func NewMemoryUpdater(structurer Structurer) *MemoryUpdater {
	return &MemoryUpdater{llm: structurer}
}

// Execute extracts a preference worth saving, if any.
func (m *MemoryUpdater) Execute(ctx context.Context, state models.TicketState) (Result, error) {
	schema := llm.Schema{
		Name:        "record_memory",
		Description: "Record whether the interaction contains a preference worth saving.",
		Properties: map[string]interface{}{
			"should_update_preference": map[string]interface{}{
				"type":        "boolean",
				"description": "Whether there is actually anything worth saving.",
			},
			"new_preference": map[string]interface{}{
				"type":        "string",
				"description": "A specific user preference found (e.g. 'Prefers short emails'). Empty if none.",
			},
		},
		Required: []string{"should_update_preference"},
	}

	userPrompt := fmt.Sprintf("Ticket text:\n\n%s\n\nResolution:\n\n%s\n\nEscalation message (if any):\n\n%s",
		state.TicketText, state.ResolutionText, state.EscalationReason)

	raw, err := m.llm.Structured(ctx, memoryUpdaterSystemPrompt, userPrompt, schema)
	if err != nil {
		return Result{}, fmt.Errorf("memory updater: %w", err)
	}

	var result memoryResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return Result{}, fmt.Errorf("memory updater: decode result: %w", err)
	}

	// An update flagged without preference text is meaningless; treat it
	// as nothing to save.
	if result.NewPreference == "" {
		result.ShouldUpdatePreference = false
	}

	return continueResult(models.Patch{
		ShouldUpdatePreference: models.Bool(result.ShouldUpdatePreference),
		NewPreference:          models.String(result.NewPreference),
	}), nil
}
