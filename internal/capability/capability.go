// Package capability defines the uniform contract every pluggable workflow
// step satisfies, and the concrete capabilities this system ships: the
// classifier, the three context fetchers, the resolver, the escalator, and
// the memory updater.
//
// Capabilities are pure with respect to conversation state: they receive a
// value snapshot and return a patch plus a routing hint. The engine owns
// merging, so a capability can neither depend on nor corrupt fields outside
// its declared contract.
package capability

import (
	"context"
	"encoding/json"

	"github.com/MTDzi/autonomous-knowledge-agent/internal/llm"
	"github.com/MTDzi/autonomous-knowledge-agent/pkg/models"
)

// Result is what a capability hands back to the engine: a state patch and
// a routing hint. Ordinary capabilities always hint back to the
// orchestrator; they never name another capability directly.
type Result struct {
	Patch models.Patch
	Next  models.Hint
}

// Capability is the contract every pluggable step satisfies.
// Execute must not leave side effects it cannot undo on failure; the
// shipped capabilities only read external systems, so a failed call simply
// aborts the run at the last checkpoint.
type Capability interface {
	Execute(ctx context.Context, state models.TicketState) (Result, error)
}

// Structurer is the narrow slice of the LLM client the model-backed
// capabilities need. *llm.Client satisfies it.
type Structurer interface {
	Structured(ctx context.Context, systemPrompt, userPrompt string, schema llm.Schema) (json.RawMessage, error)
}

var _ Structurer = (*llm.Client)(nil)

// continueResult wraps a patch in the standard return-to-orchestrator hint.
func continueResult(patch models.Patch) Result {
	return Result{Patch: patch, Next: models.HintOrchestrator}
}
