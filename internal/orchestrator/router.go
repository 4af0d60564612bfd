// Package orchestrator implements the routing policy for support-ticket
// workflows: which capability runs next, given the conversation state and
// the per-run agenda.
package orchestrator

import (
	"fmt"

	"github.com/MTDzi/autonomous-knowledge-agent/pkg/models"
)

// DefaultThreshold is the default value for all four routing thresholds.
const DefaultThreshold = 70.0

// RouterConfig contains the score thresholds the routing policy compares
// against. Zero values fall back to DefaultThreshold.
type RouterConfig struct {
	// ClassifiedThreshold is the minimum classifier confidence before any
	// supplemental fetcher is considered.
	ClassifiedThreshold float64
	// NeedsTicketsThreshold triggers the previous-ticket fetcher.
	NeedsTicketsThreshold float64
	// NeedsReservationsThreshold triggers the reservation fetcher.
	NeedsReservationsThreshold float64
	// ResolvedThreshold is the minimum resolver score below which the
	// ticket escalates.
	ResolvedThreshold float64
}

// Router is the routing authority. It is stateless configuration: all
// per-run state lives in the Execution the engine threads through the run,
// so one Router instance serves any number of concurrent runs.
type Router struct {
	classifiedThreshold        float64
	needsTicketsThreshold      float64
	needsReservationsThreshold float64
	resolvedThreshold          float64
}

// NewRouter creates a router with the given thresholds.
func NewRouter(cfg RouterConfig) *Router {
	r := &Router{
		classifiedThreshold:        cfg.ClassifiedThreshold,
		needsTicketsThreshold:      cfg.NeedsTicketsThreshold,
		needsReservationsThreshold: cfg.NeedsReservationsThreshold,
		resolvedThreshold:          cfg.ResolvedThreshold,
	}
	if r.classifiedThreshold == 0 {
		r.classifiedThreshold = DefaultThreshold
	}
	if r.needsTicketsThreshold == 0 {
		r.needsTicketsThreshold = DefaultThreshold
	}
	if r.needsReservationsThreshold == 0 {
		r.needsReservationsThreshold = DefaultThreshold
	}
	if r.resolvedThreshold == 0 {
		r.resolvedThreshold = DefaultThreshold
	}
	return r
}

// RoutingError reports an internal inconsistency in the routing policy: the
// agenda ran out before the terminal marker was popped, or a step followed
// the terminal marker. It is fatal for the run.
type RoutingError struct {
	// LastStep is the most recent step, for diagnostics.
	LastStep models.StepName
	// Reason describes the inconsistency.
	Reason string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("routing inconsistency after step %q: %s", e.LastStep, e.Reason)
}

// Next decides the next step to execute. It first applies the conditional
// insertions keyed on the step that just finished, then pops the agenda and
// records the popped step as the most recent one.
//
// Insertion rules:
//   - classifier finished with confidence at or above the classified
//     threshold: push the previous-ticket fetcher if its score qualifies,
//     else the reservation fetcher if its score qualifies. At most one
//     fetcher is inserted; previous tickets take priority because the
//     classifier result already disambiguates which context is relevant.
//     Below-threshold classifications insert nothing: the run proceeds to
//     article fetch and resolution, and a low resolution score escalates.
//   - resolver finished below the resolved threshold: push the escalator.
//   - fetchers and the escalator never trigger insertion.
//
// Popping the terminal marker ends the run; the marker must be the last
// agenda entry when popped.
func (r *Router) Next(state models.TicketState, exec *Execution) (models.StepName, error) {
	switch exec.LastStep {
	case models.StepClassifier:
		if state.ClassifiedScore >= r.classifiedThreshold {
			if state.NeedsTicketsScore >= r.needsTicketsThreshold {
				exec.push(models.StepTicketFetcher)
			} else if state.NeedsReservationsScore >= r.needsReservationsThreshold {
				exec.push(models.StepReservationFetcher)
			}
		}
	case models.StepResolver:
		if state.ResolvedScore < r.resolvedThreshold {
			exec.push(models.StepEscalator)
		}
	}

	next, ok := exec.pop()
	if !ok {
		return "", &RoutingError{LastStep: exec.LastStep, Reason: "agenda exhausted before terminal marker"}
	}
	if next == models.StepTerminate && exec.Pending() > 0 {
		return "", &RoutingError{LastStep: exec.LastStep, Reason: fmt.Sprintf("terminal marker popped with %d steps pending", exec.Pending())}
	}

	exec.LastStep = next
	return next, nil
}
