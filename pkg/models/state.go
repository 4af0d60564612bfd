package models

// UnsetScore is the sentinel for scores that have not been computed yet.
// Computed scores are always within [0, 100].
const UnsetScore = -1.0

// Record is a flat key->string view of one row fetched from a support data
// source (a previous ticket, a reservation, or a knowledge article).
type Record map[string]string

// TicketState is the conversation state threaded through every workflow step.
// Exactly one component owns it at a time: capabilities receive a copy and
// return a Patch, and the engine merges patches into the canonical state.
type TicketState struct {
	// TicketText is the raw text of the support ticket.
	TicketText string `json:"ticket_text"`
	// TicketMetadata carries submission metadata (channel, priority, date).
	TicketMetadata map[string]string `json:"ticket_metadata,omitempty"`
	// AccountID identifies the tenant account the ticket belongs to.
	AccountID string `json:"account_id"`
	// UserID identifies the end user, if known.
	UserID string `json:"user_id,omitempty"`

	// UserPreference is the saved long-term preference for this user.
	// Loaded once per run before any capability executes; only the
	// memory-update path at the end of a run may rewrite it.
	UserPreference string `json:"user_preference,omitempty"`

	// Tags are the classification tags assigned to the ticket.
	Tags []string `json:"tags,omitempty"`
	// ClassifiedScore is the classifier's confidence that the ticket intent
	// is clearly understood.
	ClassifiedScore float64 `json:"classified_score"`
	// NeedsTicketsScore scores whether historical tickets should be fetched.
	NeedsTicketsScore float64 `json:"needs_tickets_score"`
	// NeedsReservationsScore scores whether reservations should be fetched.
	NeedsReservationsScore float64 `json:"needs_reservations_score"`

	// PreviousTickets holds earlier tickets raised by the same user.
	PreviousTickets []Record `json:"previous_tickets,omitempty"`
	// Reservations holds the user's reservations.
	Reservations []Record `json:"reservations,omitempty"`
	// RelevantArticles holds knowledge articles matched to the ticket.
	RelevantArticles []Record `json:"relevant_articles,omitempty"`

	// ResolutionText is the drafted response resolving the issue.
	ResolutionText string `json:"resolution_text,omitempty"`
	// ResolvedScore measures how well the resolution addresses the issue.
	ResolvedScore float64 `json:"resolved_score"`

	// EscalationReason explains why the ticket was escalated, if it was.
	EscalationReason string `json:"escalation_reason,omitempty"`
	// UrgencyLevel is the escalation urgency (e.g. "high", "medium", "low").
	UrgencyLevel string `json:"urgency_level,omitempty"`

	// ShouldUpdatePreference marks that the memory updater found a
	// preference worth saving for future visits.
	ShouldUpdatePreference bool `json:"should_update_preference"`
	// NewPreference is the preference text to save, if any.
	NewPreference string `json:"new_preference,omitempty"`
}

// NewTicketState returns a state for a fresh run with all scores unset.
func NewTicketState(ticketText string, metadata map[string]string, accountID, userID string) TicketState {
	return TicketState{
		TicketText:             ticketText,
		TicketMetadata:         metadata,
		AccountID:              accountID,
		UserID:                 userID,
		ClassifiedScore:        UnsetScore,
		NeedsTicketsScore:      UnsetScore,
		NeedsReservationsScore: UnsetScore,
		ResolvedScore:          UnsetScore,
	}
}

// Classified returns true once the classifier has produced a score.
func (s *TicketState) Classified() bool {
	return s.ClassifiedScore != UnsetScore
}

// ScoreValid reports whether a score is the unset sentinel or within [0, 100].
func ScoreValid(score float64) bool {
	return score == UnsetScore || (score >= 0 && score <= 100)
}

// Validate checks the score invariants on the state.
func (s *TicketState) Validate() bool {
	return ScoreValid(s.ClassifiedScore) &&
		ScoreValid(s.NeedsTicketsScore) &&
		ScoreValid(s.NeedsReservationsScore) &&
		ScoreValid(s.ResolvedScore)
}
