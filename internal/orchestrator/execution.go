package orchestrator

import "github.com/MTDzi/autonomous-knowledge-agent/pkg/models"

// Execution is the per-run routing context: the agenda of pending steps and
// the most recently routed step. It is created fresh for every run and
// threaded through the engine's run loop, so there is no long-lived
// orchestrator state to reset between runs. The fields are exported so the
// engine can checkpoint the routing position alongside the conversation
// state and resume mid-agenda.
type Execution struct {
	// Agenda is the stack of pending step names. The last element is
	// popped first.
	Agenda []models.StepName `json:"agenda"`
	// LastStep is the step that most recently finished, or the
	// orchestrator sentinel at the start of a run.
	LastStep models.StepName `json:"last_step"`
}

// NewExecution returns a routing context with the baseline agenda.
// Evaluated last-in-first-out, the baseline produces the execution order:
// classifier, article fetcher, resolver, memory updater, terminate.
func NewExecution() *Execution {
	return &Execution{
		Agenda: []models.StepName{
			models.StepTerminate,
			models.StepMemoryUpdater,
			models.StepResolver,
			models.StepArticleFetcher,
			models.StepClassifier,
		},
		LastStep: models.StepOrchestrator,
	}
}

// push adds a step to the top of the agenda.
func (e *Execution) push(step models.StepName) {
	e.Agenda = append(e.Agenda, step)
}

// pop removes and returns the top of the agenda.
func (e *Execution) pop() (models.StepName, bool) {
	if len(e.Agenda) == 0 {
		return "", false
	}
	step := e.Agenda[len(e.Agenda)-1]
	e.Agenda = e.Agenda[:len(e.Agenda)-1]
	return step, true
}

// Pending returns the number of steps still on the agenda.
func (e *Execution) Pending() int {
	return len(e.Agenda)
}
