// Package engine drives support-ticket runs: it asks the routing policy for
// the next step, executes the matching capability, merges the returned patch
// into the conversation state, and checkpoints after every step so an
// interrupted run resumes where it stopped.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/MTDzi/autonomous-knowledge-agent/internal/capability"
	"github.com/MTDzi/autonomous-knowledge-agent/internal/orchestrator"
	"github.com/MTDzi/autonomous-knowledge-agent/internal/store"
	"github.com/MTDzi/autonomous-knowledge-agent/pkg/models"
)

// maxSteps bounds a single run. The baseline agenda plus every conditional
// insertion stays well under this; hitting it means a routing bug.
const maxSteps = 25

// StepError wraps a capability failure with the step that produced it. The
// checkpoint from the previous step survives the failure, so the run can be
// resumed once the underlying cause clears.
type StepError struct {
	Step models.StepName
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// checkpoint is the durable snapshot of a run: conversation state plus the
// routing position. Serialized as JSON into the checkpoint store.
type checkpoint struct {
	State     models.TicketState     `json:"state"`
	Execution orchestrator.Execution `json:"execution"`
	Steps     []models.StepName      `json:"steps"`
}

// RunResult is the outcome of a completed run.
type RunResult struct {
	// ThreadID identifies the run, generated when the caller passed none.
	ThreadID string
	// State is the final conversation state.
	State models.TicketState
	// Steps lists the executed steps in order, terminal marker excluded.
	Steps []models.StepName
	// Escalated reports whether the escalator ran.
	Escalated bool
	// Resumed reports whether the run restarted from a checkpoint.
	Resumed bool
}

// Engine executes ticket runs against a registered set of capabilities.
// Safe for use from a single goroutine per run; distinct runs may share one
// Engine because all per-run state lives on the stack of Run.
type Engine struct {
	router      *orchestrator.Router
	steps       map[models.StepName]capability.Capability
	checkpoints store.CheckpointStore
	prefs       store.PreferenceCache
	observer    Observer
}

// New creates an engine over the given routing policy and stores.
func New(router *orchestrator.Router, checkpoints store.CheckpointStore, prefs store.PreferenceCache) *Engine {
	return &Engine{
		router:      router,
		steps:       make(map[models.StepName]capability.Capability),
		checkpoints: checkpoints,
		prefs:       prefs,
	}
}

// RegisterStep binds a capability to a step name. Registering the same name
// twice replaces the earlier binding.
func (e *Engine) RegisterStep(name models.StepName, impl capability.Capability) {
	e.steps[name] = impl
}

// SetObserver installs a lifecycle event observer.
func (e *Engine) SetObserver(obs Observer) {
	e.observer = obs
}

// Run executes a ticket to completion. A non-empty threadID resumes from
// that thread's checkpoint when one exists; otherwise a fresh run starts
// under a generated thread ID. The initial state is ignored on resume: the
// checkpointed state is authoritative.
func (e *Engine) Run(ctx context.Context, initial models.TicketState, threadID string) (RunResult, error) {
	if threadID == "" {
		threadID = uuid.New().String()
	}

	state, exec, executed, resumed, err := e.loadOrStart(initial, threadID)
	if err != nil {
		return RunResult{ThreadID: threadID}, err
	}

	if resumed && exec.LastStep == models.StepTerminate {
		log.Printf("[engine] thread %s already completed, returning checkpointed state", threadID)
		return e.result(threadID, state, executed, true), nil
	}

	if resumed {
		e.emit(Event{Type: EventRunResumed, ThreadID: threadID, Step: exec.LastStep,
			Detail: fmt.Sprintf("%d steps pending", exec.Pending())})
		log.Printf("[engine] resuming thread %s after step %q (%d pending)", threadID, exec.LastStep, exec.Pending())
	} else {
		e.emit(Event{Type: EventRunStarted, ThreadID: threadID})
		log.Printf("[engine] starting thread %s", threadID)
	}

	for i := 0; i < maxSteps; i++ {
		if err := ctx.Err(); err != nil {
			return e.result(threadID, state, executed, resumed), fmt.Errorf("run interrupted: %w", err)
		}

		step, err := e.router.Next(state, exec)
		if err != nil {
			return e.result(threadID, state, executed, resumed), err
		}

		if step == models.StepTerminate {
			if err := e.save(threadID, state, exec, executed); err != nil {
				return e.result(threadID, state, executed, resumed), err
			}
			e.emit(Event{Type: EventRunCompleted, ThreadID: threadID})
			log.Printf("[engine] thread %s completed after %d steps", threadID, len(executed))
			return e.result(threadID, state, executed, resumed), nil
		}

		impl, ok := e.steps[step]
		if !ok {
			return e.result(threadID, state, executed, resumed), fmt.Errorf("no capability registered for step %q", step)
		}

		e.emit(Event{Type: EventStepStarted, ThreadID: threadID, Step: step})

		result, err := impl.Execute(ctx, state)
		if err != nil {
			return e.result(threadID, state, executed, resumed), &StepError{Step: step, Err: err}
		}

		result.Patch.Apply(&state)
		executed = append(executed, step)

		if step == models.StepMemoryUpdater {
			if err := e.persistPreference(&state, threadID); err != nil {
				return e.result(threadID, state, executed, resumed), err
			}
		}

		if err := e.save(threadID, state, exec, executed); err != nil {
			return e.result(threadID, state, executed, resumed), err
		}

		e.emit(Event{Type: EventStepCompleted, ThreadID: threadID, Step: step})

		if result.Next == models.HintHalt {
			log.Printf("[engine] thread %s halted by step %q", threadID, step)
			return e.result(threadID, state, executed, resumed), nil
		}
	}

	return e.result(threadID, state, executed, resumed), fmt.Errorf("run exceeded %d steps, aborting thread %s", maxSteps, threadID)
}

// loadOrStart restores a checkpointed run or prepares a fresh one. Fresh
// runs load the user preference once, before any capability executes.
func (e *Engine) loadOrStart(initial models.TicketState, threadID string) (models.TicketState, *orchestrator.Execution, []models.StepName, bool, error) {
	raw, found, err := e.checkpoints.LoadCheckpoint(threadID)
	if err != nil {
		return models.TicketState{}, nil, nil, false, fmt.Errorf("load checkpoint for thread %s: %w", threadID, err)
	}

	if found {
		var cp checkpoint
		if err := json.Unmarshal(raw, &cp); err != nil {
			return models.TicketState{}, nil, nil, false, fmt.Errorf("decode checkpoint for thread %s: %w", threadID, err)
		}
		return cp.State, &cp.Execution, cp.Steps, true, nil
	}

	state := initial
	if state.TicketText == "" {
		return models.TicketState{}, nil, nil, false, fmt.Errorf("no checkpoint for thread %s and no ticket text to start a run", threadID)
	}
	if !state.Validate() {
		return models.TicketState{}, nil, nil, false, fmt.Errorf("initial state for thread %s has a score outside [0, 100]", threadID)
	}

	if state.UserID != "" {
		pref, ok, err := e.prefs.GetPreference(state.UserID)
		if err != nil {
			return models.TicketState{}, nil, nil, false, fmt.Errorf("load preference for user %s: %w", state.UserID, err)
		}
		if ok {
			state.UserPreference = pref
		}
	}

	return state, orchestrator.NewExecution(), nil, false, nil
}

// persistPreference writes the memory updater's decision through to the
// durable cache and reflects it in the in-flight state. Re-running the same
// write on resume is harmless: the cache upserts, last write wins.
func (e *Engine) persistPreference(state *models.TicketState, threadID string) error {
	if !state.ShouldUpdatePreference || state.NewPreference == "" || state.UserID == "" {
		return nil
	}
	if err := e.prefs.SetPreference(state.UserID, state.NewPreference); err != nil {
		return fmt.Errorf("save preference for user %s: %w", state.UserID, err)
	}
	state.UserPreference = state.NewPreference
	e.emit(Event{Type: EventPreferenceSaved, ThreadID: threadID, Detail: state.UserID})
	log.Printf("[engine] saved preference for user %s", state.UserID)
	return nil
}

func (e *Engine) save(threadID string, state models.TicketState, exec *orchestrator.Execution, executed []models.StepName) error {
	cp := checkpoint{State: state, Execution: *exec, Steps: executed}
	raw, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint for thread %s: %w", threadID, err)
	}
	if err := e.checkpoints.SaveCheckpoint(threadID, raw); err != nil {
		return fmt.Errorf("save checkpoint for thread %s: %w", threadID, err)
	}
	return nil
}

func (e *Engine) result(threadID string, state models.TicketState, executed []models.StepName, resumed bool) RunResult {
	escalated := false
	for _, step := range executed {
		if step == models.StepEscalator {
			escalated = true
		}
	}
	return RunResult{
		ThreadID:  threadID,
		State:     state,
		Steps:     executed,
		Escalated: escalated,
		Resumed:   resumed,
	}
}
