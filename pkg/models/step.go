package models

// StepName identifies a named step in the workflow graph. Step names are
// opaque strings to the engine; the constants below are the steps this
// system registers.
type StepName string

const (
	// StepOrchestrator is the routing authority and the graph entry point.
	StepOrchestrator StepName = "orchestrator"
	// StepClassifier assigns tags and routing scores to the ticket.
	StepClassifier StepName = "classifier"
	// StepTicketFetcher retrieves the user's previous tickets.
	StepTicketFetcher StepName = "ticket_fetcher"
	// StepReservationFetcher retrieves the user's reservations.
	StepReservationFetcher StepName = "reservation_fetcher"
	// StepArticleFetcher retrieves knowledge articles matching the ticket.
	StepArticleFetcher StepName = "article_fetcher"
	// StepResolver drafts the resolution and scores it.
	StepResolver StepName = "resolver"
	// StepEscalator escalates tickets the resolver could not settle.
	StepEscalator StepName = "escalator"
	// StepMemoryUpdater extracts long-term preferences worth saving.
	StepMemoryUpdater StepName = "memory_updater"

	// StepTerminate is the reserved terminal marker. It is never a
	// registered capability; popping it from the agenda ends the run.
	StepTerminate StepName = "__terminate__"
)

// Valid returns true if the name is a known step.
func (n StepName) Valid() bool {
	switch n {
	case StepOrchestrator, StepClassifier, StepTicketFetcher, StepReservationFetcher,
		StepArticleFetcher, StepResolver, StepEscalator, StepMemoryUpdater, StepTerminate:
		return true
	default:
		return false
	}
}

// Hint is the routing hint a capability returns alongside its state patch.
// Capabilities never name another capability directly; routing stays
// centralized in the orchestrator.
type Hint string

const (
	// HintOrchestrator hands control back to the orchestrator. This is the
	// hint every ordinary capability returns.
	HintOrchestrator Hint = "orchestrator"
	// HintHalt asks the engine to stop the run after this step. No shipped
	// capability returns it; it exists so a custom capability can short-
	// circuit a run without faking an error.
	HintHalt Hint = "halt"
)
