package engine

import "github.com/MTDzi/autonomous-knowledge-agent/pkg/models"

// EventType categorizes engine lifecycle events.
type EventType string

const (
	// EventRunStarted fires when a fresh run begins.
	EventRunStarted EventType = "run_started"
	// EventRunResumed fires when a run restarts from a checkpoint.
	EventRunResumed EventType = "run_resumed"
	// EventStepStarted fires before a capability executes.
	EventStepStarted EventType = "step_started"
	// EventStepCompleted fires after a capability's patch is merged and the
	// checkpoint is durable.
	EventStepCompleted EventType = "step_completed"
	// EventPreferenceSaved fires when a user preference is written through
	// to the durable cache.
	EventPreferenceSaved EventType = "preference_saved"
	// EventRunCompleted fires when the terminal marker is reached.
	EventRunCompleted EventType = "run_completed"
)

// Event describes a single engine lifecycle occurrence. Events are emitted
// synchronously from the run loop, so observers should return quickly.
type Event struct {
	Type     EventType
	ThreadID string
	Step     models.StepName
	Detail   string
}

// Observer receives engine events. A nil observer disables emission.
type Observer func(Event)

func (e *Engine) emit(evt Event) {
	if e.observer != nil {
		e.observer(evt)
	}
}
