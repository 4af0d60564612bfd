package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MTDzi/autonomous-knowledge-agent/internal/llm"
	"github.com/MTDzi/autonomous-knowledge-agent/pkg/models"
)

const resolverSystemPrompt = `You are a support resolution agent. Draft a response that
resolves the user's ticket using the gathered context: knowledge articles, the user's
previous tickets, and their reservations.

Respect the user's saved preference when writing the response, if one is given.
Then score how well the drafted response actually resolves the issue.`

// resolverResult is the structured output of the resolution call.
type resolverResult struct {
	ResolutionText string  `json:"resolution_text"`
	ResolvedScore  float64 `json:"is_resolved_score"`
}

// Resolver drafts the final resolution and scores it.
// Reads ticket text, metadata, tags, articles, preference, reservations,
// and previous tickets; writes the resolution text and resolved score.
type Resolver struct {
	llm Structurer
}

// NewResolver creates a resolver backed by the given model client.
func NewResolver(structurer Structurer) *Resolver {
	return &Resolver{llm: structurer}
}

// Execute drafts the resolution.
func (r *Resolver) Execute(ctx context.Context, state models.TicketState) (Result, error) {
	schema := llm.Schema{
		Name:        "record_resolution",
		Description: "Record the drafted resolution and its quality score.",
		Properties: map[string]interface{}{
			"resolution_text": map[string]interface{}{
				"type":        "string",
				"description": "A response resolving the issue.",
			},
			"is_resolved_score": map[string]interface{}{
				"type":        "number",
				"description": "A score between 0 and 100 indicating how well the issue was resolved.",
			},
		},
		Required: []string{"resolution_text", "is_resolved_score"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Ticket:\n\n%s\n\n", state.TicketText)
	fmt.Fprintf(&b, "Metadata:\n%s\n\n", formatMetadata(state.TicketMetadata))
	fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(state.Tags, ", "))
	if state.UserPreference != "" {
		fmt.Fprintf(&b, "Saved user preference: %s\n\n", state.UserPreference)
	}
	fmt.Fprintf(&b, "Knowledge articles:\n%s\n\n", formatRecords(state.RelevantArticles))
	fmt.Fprintf(&b, "Previous tickets:\n%s\n\n", formatRecords(state.PreviousTickets))
	fmt.Fprintf(&b, "Reservations:\n%s\n", formatRecords(state.Reservations))

	raw, err := r.llm.Structured(ctx, resolverSystemPrompt, b.String(), schema)
	if err != nil {
		return Result{}, fmt.Errorf("resolver: %w", err)
	}

	var result resolverResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return Result{}, fmt.Errorf("resolver: decode result: %w", err)
	}
	if result.ResolvedScore < 0 || result.ResolvedScore > 100 {
		return Result{}, fmt.Errorf("resolver: score %v out of range [0, 100]", result.ResolvedScore)
	}

	return continueResult(models.Patch{
		ResolutionText: models.String(result.ResolutionText),
		ResolvedScore:  models.Float(result.ResolvedScore),
	}), nil
}
