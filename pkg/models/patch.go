package models

// Patch is a partial update to a TicketState. Nil fields are untouched, so
// applying a patch merges the fields a capability actually produced rather
// than replacing the whole state. Capabilities never mutate state directly;
// they return a Patch and the engine applies it.
type Patch struct {
	Tags                   []string
	ClassifiedScore        *float64
	NeedsTicketsScore      *float64
	NeedsReservationsScore *float64

	PreviousTickets  []Record
	Reservations     []Record
	RelevantArticles []Record

	ResolutionText *string
	ResolvedScore  *float64

	EscalationReason *string
	UrgencyLevel     *string

	ShouldUpdatePreference *bool
	NewPreference          *string
}

// Apply merges the patch into the state. Only set fields are written.
func (p Patch) Apply(s *TicketState) {
	if p.Tags != nil {
		s.Tags = p.Tags
	}
	if p.ClassifiedScore != nil {
		s.ClassifiedScore = *p.ClassifiedScore
	}
	if p.NeedsTicketsScore != nil {
		s.NeedsTicketsScore = *p.NeedsTicketsScore
	}
	if p.NeedsReservationsScore != nil {
		s.NeedsReservationsScore = *p.NeedsReservationsScore
	}
	if p.PreviousTickets != nil {
		s.PreviousTickets = p.PreviousTickets
	}
	if p.Reservations != nil {
		s.Reservations = p.Reservations
	}
	if p.RelevantArticles != nil {
		s.RelevantArticles = p.RelevantArticles
	}
	if p.ResolutionText != nil {
		s.ResolutionText = *p.ResolutionText
	}
	if p.ResolvedScore != nil {
		s.ResolvedScore = *p.ResolvedScore
	}
	if p.EscalationReason != nil {
		s.EscalationReason = *p.EscalationReason
	}
	if p.UrgencyLevel != nil {
		s.UrgencyLevel = *p.UrgencyLevel
	}
	if p.ShouldUpdatePreference != nil {
		s.ShouldUpdatePreference = *p.ShouldUpdatePreference
	}
	if p.NewPreference != nil {
		s.NewPreference = *p.NewPreference
	}
}

// String returns a pointer to s, for building patches.
func String(s string) *string { return &s }

// Float returns a pointer to f, for building patches.
func Float(f float64) *float64 { return &f }

// Bool returns a pointer to b, for building patches.
func Bool(b bool) *bool { return &b }
