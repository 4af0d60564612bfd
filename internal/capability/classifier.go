package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/MTDzi/autonomous-knowledge-agent/internal/llm"
	"github.com/MTDzi/autonomous-knowledge-agent/internal/tags"
	"github.com/MTDzi/autonomous-knowledge-agent/pkg/models"
)

const classifierSystemPrompt = `You are a support classifier for account: %s.
Assign tags to the user's support ticket from the closed tag set in the output schema.
A ticket might require multiple tags, for example:

How to Reserve a Spot for an Event --> Tags: reservation, events, booking, attendance
Changing your Registered Email Address --> Tags: security, account, email, login
Equipment and Rentals --> Tags: equipment, rentals, preparation, liability
Changing the Location of your Subscription --> Tags: location, account, settings, travel

Some tickets are ambiguous; use your best judgement to pick the most relevant tags.

Then assess whether a downstream step should fetch the user's previous tickets to
fully address the issue, and whether the ticket relates to reservations or event
bookings so that data should be fetched.

Finally, self-assess whether you managed to classify the ticket clearly.`

// classifierResult is the structured output of the classification call.
type classifierResult struct {
	ClassifiedScore        float64  `json:"is_ticket_classified_score"`
	NeedsTicketsScore      float64  `json:"needs_info_about_previous_user_tickets_score"`
	NeedsReservationsScore float64  `json:"needs_info_about_reservations_score"`
	Tags                   []string `json:"tags"`
}

// Classifier assigns tags and routing scores to the incoming ticket.
// Tags are validated against the account's closed vocabulary; unknown tags
// returned by the model are dropped rather than failing the run.
type Classifier struct {
	llm   Structurer
	vocab *tags.Cache
}

// NewClassifier creates a classifier backed by the given model client and
// tag vocabulary cache.
func NewClassifier(structurer Structurer, vocab *tags.Cache) *Classifier {
	return &Classifier{llm: structurer, vocab: vocab}
}

// Execute classifies the ticket. Reads ticket text, metadata, and account;
// writes tags and the three routing scores.
func (c *Classifier) Execute(ctx context.Context, state models.TicketState) (Result, error) {
	vocab, err := c.vocab.Get(state.AccountID)
	if err != nil {
		return Result{}, fmt.Errorf("classifier: %w", err)
	}

	schema := llm.Schema{
		Name:        "classify_ticket",
		Description: "Record the classification of a support ticket.",
		Properties: map[string]interface{}{
			"is_ticket_classified_score": map[string]interface{}{
				"type":        "number",
				"description": "A score between 0 and 100; 100 if the user's intent is clearly understood, 0 if not.",
			},
			"needs_info_about_previous_user_tickets_score": map[string]interface{}{
				"type":        "number",
				"description": "A score between 0 and 100; 100 if we need to look up historical support data for this user, 0 if not.",
			},
			"needs_info_about_reservations_score": map[string]interface{}{
				"type":        "number",
				"description": "A score between 0 and 100; 100 if the query relates to event bookings, 0 if not.",
			},
			"tags": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string", "enum": vocab.Tags()},
				"description": "Select all applicable tags from: " + strings.Join(vocab.Tags(), ", "),
			},
		},
		Required: []string{"is_ticket_classified_score", "needs_info_about_previous_user_tickets_score", "needs_info_about_reservations_score", "tags"},
	}

	userPrompt := fmt.Sprintf("Classify this ticket:\n\n%s\n\nwith the following metadata:\n\n%s",
		state.TicketText, formatMetadata(state.TicketMetadata))

	raw, err := c.llm.Structured(ctx, fmt.Sprintf(classifierSystemPrompt, state.AccountID), userPrompt, schema)
	if err != nil {
		return Result{}, fmt.Errorf("classifier: %w", err)
	}

	var result classifierResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return Result{}, fmt.Errorf("classifier: decode result: %w", err)
	}

	for _, score := range []float64{result.ClassifiedScore, result.NeedsTicketsScore, result.NeedsReservationsScore} {
		if score < 0 || score > 100 {
			return Result{}, fmt.Errorf("classifier: score %v out of range [0, 100]", score)
		}
	}

	valid, dropped := vocab.Filter(result.Tags)
	if len(dropped) > 0 {
		log.Printf("[classifier] dropping tags outside vocabulary: %v", dropped)
	}
	if valid == nil {
		valid = []string{}
	}

	return continueResult(models.Patch{
		Tags:                   valid,
		ClassifiedScore:        models.Float(result.ClassifiedScore),
		NeedsTicketsScore:      models.Float(result.NeedsTicketsScore),
		NeedsReservationsScore: models.Float(result.NeedsReservationsScore),
	}), nil
}
