package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/MTDzi/autonomous-knowledge-agent/internal/capability"
	"github.com/MTDzi/autonomous-knowledge-agent/internal/orchestrator"
	"github.com/MTDzi/autonomous-knowledge-agent/internal/store"
	"github.com/MTDzi/autonomous-knowledge-agent/pkg/models"
)

// stubStep is a scripted capability: it returns a fixed patch and counts
// invocations.
type stubStep struct {
	patch models.Patch
	next  models.Hint
	err   error
	calls int
	// seen records the state passed to the most recent Execute call.
	seen models.TicketState
}

func (s *stubStep) Execute(ctx context.Context, state models.TicketState) (capability.Result, error) {
	s.calls++
	s.seen = state
	if s.err != nil {
		return capability.Result{}, s.err
	}
	next := s.next
	if next == "" {
		next = models.HintOrchestrator
	}
	return capability.Result{Patch: s.patch, Next: next}, nil
}

func setupTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "udahub.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// classifierStub returns a confident classification with no fetch needs.
func classifierStub() *stubStep {
	return &stubStep{patch: models.Patch{
		Tags:                   []string{"location"},
		ClassifiedScore:        models.Float(85),
		NeedsTicketsScore:      models.Float(20),
		NeedsReservationsScore: models.Float(10),
	}}
}

func articlesStub() *stubStep {
	return &stubStep{patch: models.Patch{
		RelevantArticles: []models.Record{{"title": "Changing the Location of your Subscription"}},
	}}
}

func resolverStub(score float64) *stubStep {
	return &stubStep{patch: models.Patch{
		ResolutionText: models.String("Here is how to change your location."),
		ResolvedScore:  models.Float(score),
	}}
}

func memoryStub() *stubStep {
	return &stubStep{patch: models.Patch{ShouldUpdatePreference: models.Bool(false)}}
}

// testEngine wires an engine over a fresh temp database with the standard
// happy-path stubs. Individual tests replace registrations as needed.
func testEngine(t *testing.T) (*Engine, *store.DB, map[models.StepName]*stubStep) {
	t.Helper()
	db := setupTestDB(t)

	stubs := map[models.StepName]*stubStep{
		models.StepClassifier:         classifierStub(),
		models.StepTicketFetcher:      {patch: models.Patch{PreviousTickets: []models.Record{}}},
		models.StepReservationFetcher: {patch: models.Patch{Reservations: []models.Record{}}},
		models.StepArticleFetcher:     articlesStub(),
		models.StepResolver:           resolverStub(92),
		models.StepEscalator:          {patch: models.Patch{EscalationReason: models.String("low score"), UrgencyLevel: models.String("high")}},
		models.StepMemoryUpdater:      memoryStub(),
	}

	eng := New(orchestrator.NewRouter(orchestrator.RouterConfig{}), db, db)
	for name, stub := range stubs {
		eng.RegisterStep(name, stub)
	}
	return eng, db, stubs
}

func testTicket() models.TicketState {
	return models.NewTicketState(
		"I need to change the location of my subscription.",
		map[string]string{"channel": "email"},
		"cultpass",
		"user-1",
	)
}

func TestRunHappyPath(t *testing.T) {
	eng, db, stubs := testEngine(t)

	result, err := eng.Run(context.Background(), testTicket(), "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []models.StepName{
		models.StepClassifier,
		models.StepArticleFetcher,
		models.StepResolver,
		models.StepMemoryUpdater,
	}
	if len(result.Steps) != len(want) {
		t.Fatalf("Steps = %v, want %v", result.Steps, want)
	}
	for i := range want {
		if result.Steps[i] != want[i] {
			t.Fatalf("Steps = %v, want %v", result.Steps, want)
		}
	}

	if result.ThreadID == "" {
		t.Error("expected a generated thread ID")
	}
	if result.Escalated {
		t.Error("high resolved score must not escalate")
	}
	if result.State.ResolutionText == "" {
		t.Error("final state missing resolution text")
	}
	if stubs[models.StepTicketFetcher].calls != 0 || stubs[models.StepReservationFetcher].calls != 0 {
		t.Error("no fetcher should run when fetch scores are low")
	}

	// The completed run leaves a durable checkpoint behind.
	if _, found, err := db.LoadCheckpoint(result.ThreadID); err != nil || !found {
		t.Errorf("expected final checkpoint, found=%v err=%v", found, err)
	}
}

func TestRunEscalates(t *testing.T) {
	eng, _, stubs := testEngine(t)
	eng.RegisterStep(models.StepResolver, resolverStub(40))

	result, err := eng.Run(context.Background(), testTicket(), "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Escalated {
		t.Error("resolved score 40 must escalate")
	}
	if stubs[models.StepEscalator].calls != 1 {
		t.Errorf("escalator ran %d times, want 1", stubs[models.StepEscalator].calls)
	}
	if result.State.UrgencyLevel != "high" {
		t.Errorf("UrgencyLevel = %q, want high", result.State.UrgencyLevel)
	}
	// The memory updater still runs after escalation.
	if result.Steps[len(result.Steps)-1] != models.StepMemoryUpdater {
		t.Errorf("last step = %q, want memory updater", result.Steps[len(result.Steps)-1])
	}
}

func TestRunInsertsTicketFetcher(t *testing.T) {
	eng, _, stubs := testEngine(t)
	eng.RegisterStep(models.StepClassifier, &stubStep{patch: models.Patch{
		Tags:                   []string{"account"},
		ClassifiedScore:        models.Float(85),
		NeedsTicketsScore:      models.Float(90),
		NeedsReservationsScore: models.Float(95),
	}})

	result, err := eng.Run(context.Background(), testTicket(), "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Steps[1] != models.StepTicketFetcher {
		t.Errorf("Steps = %v, want ticket fetcher right after classifier", result.Steps)
	}
	if stubs[models.StepReservationFetcher].calls != 0 {
		t.Error("reservation fetcher must not run when previous tickets take priority")
	}
}

func TestRunPersistsPreference(t *testing.T) {
	eng, db, _ := testEngine(t)
	eng.RegisterStep(models.StepMemoryUpdater, &stubStep{patch: models.Patch{
		ShouldUpdatePreference: models.Bool(true),
		NewPreference:          models.String("Prefers concise replies"),
	}})

	result, err := eng.Run(context.Background(), testTicket(), "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.State.UserPreference != "Prefers concise replies" {
		t.Errorf("UserPreference = %q after run", result.State.UserPreference)
	}

	pref, found, err := db.GetPreference("user-1")
	if err != nil || !found {
		t.Fatalf("GetPreference: found=%v err=%v", found, err)
	}
	if pref != "Prefers concise replies" {
		t.Errorf("stored preference = %q", pref)
	}

	// A later run for the same user sees the preference before any
	// capability executes.
	classifier := classifierStub()
	eng.RegisterStep(models.StepClassifier, classifier)
	eng.RegisterStep(models.StepMemoryUpdater, memoryStub())

	if _, err := eng.Run(context.Background(), testTicket(), ""); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if classifier.seen.UserPreference != "Prefers concise replies" {
		t.Errorf("classifier saw preference %q, want the saved one", classifier.seen.UserPreference)
	}
}

func TestRunResumesAfterStepFailure(t *testing.T) {
	eng, _, stubs := testEngine(t)
	eng.RegisterStep(models.StepResolver, &stubStep{err: errors.New("api down")})

	_, err := eng.Run(context.Background(), testTicket(), "thread-1")
	if err == nil {
		t.Fatal("expected run to fail at the resolver")
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != models.StepResolver {
		t.Fatalf("error = %v, want StepError for the resolver", err)
	}

	// Resume under the same thread: the classifier and article fetcher
	// must not run again.
	eng.RegisterStep(models.StepResolver, resolverStub(92))

	result, err := eng.Run(context.Background(), testTicket(), "thread-1")
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if !result.Resumed {
		t.Error("expected Resumed = true")
	}
	if stubs[models.StepClassifier].calls != 1 {
		t.Errorf("classifier ran %d times across both runs, want 1", stubs[models.StepClassifier].calls)
	}
	if stubs[models.StepArticleFetcher].calls != 1 {
		t.Errorf("article fetcher ran %d times across both runs, want 1", stubs[models.StepArticleFetcher].calls)
	}
	if result.State.ResolutionText == "" {
		t.Error("resumed run missing resolution text")
	}
}

func TestRunCompletedThreadIsIdempotent(t *testing.T) {
	eng, _, stubs := testEngine(t)

	first, err := eng.Run(context.Background(), testTicket(), "thread-done")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	second, err := eng.Run(context.Background(), testTicket(), "thread-done")
	if err != nil {
		t.Fatalf("re-run failed: %v", err)
	}

	if !second.Resumed {
		t.Error("expected re-run of a completed thread to report Resumed")
	}
	if second.State.ResolutionText != first.State.ResolutionText {
		t.Error("re-run changed the final state")
	}
	if stubs[models.StepClassifier].calls != 1 {
		t.Errorf("classifier ran %d times, want 1: completed threads must not re-execute", stubs[models.StepClassifier].calls)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	eng, db, stubs := testEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	// The classifier cancels the run as a side effect, simulating an
	// interrupt between steps.
	classifier := classifierStub()
	eng.RegisterStep(models.StepClassifier, &cancellingStep{inner: classifier, cancel: cancel})

	_, err := eng.Run(ctx, testTicket(), "thread-int")
	if err == nil {
		t.Fatal("expected interruption error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}

	// The checkpoint from the completed step survives the interrupt.
	if _, found, err := db.LoadCheckpoint("thread-int"); err != nil || !found {
		t.Fatalf("expected checkpoint after interrupt, found=%v err=%v", found, err)
	}

	// Resuming continues from the article fetcher.
	result, err := eng.Run(context.Background(), testTicket(), "thread-int")
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if classifier.calls != 1 {
		t.Errorf("classifier ran %d times, want 1", classifier.calls)
	}
	if stubs[models.StepResolver].calls != 1 {
		t.Errorf("resolver ran %d times, want 1", stubs[models.StepResolver].calls)
	}
	if result.State.ResolutionText == "" {
		t.Error("resumed run missing resolution text")
	}
}

// cancellingStep runs the wrapped step, then cancels the context.
type cancellingStep struct {
	inner  capability.Capability
	cancel context.CancelFunc
}

func (c *cancellingStep) Execute(ctx context.Context, state models.TicketState) (capability.Result, error) {
	result, err := c.inner.Execute(ctx, state)
	c.cancel()
	return result, err
}

func TestRunUnknownStep(t *testing.T) {
	db := setupTestDB(t)
	eng := New(orchestrator.NewRouter(orchestrator.RouterConfig{}), db, db)

	if _, err := eng.Run(context.Background(), testTicket(), ""); err == nil {
		t.Fatal("expected error when no capability is registered")
	}
}

func TestRunRejectsEmptyTicket(t *testing.T) {
	eng, _, _ := testEngine(t)

	// Resuming a thread that has no checkpoint falls through to a fresh
	// run, which needs ticket text.
	if _, err := eng.Run(context.Background(), models.TicketState{}, "no-such-thread"); err == nil {
		t.Fatal("expected error for empty ticket text")
	}
}

func TestRunRejectsInvalidInitialState(t *testing.T) {
	eng, _, _ := testEngine(t)

	state := testTicket()
	state.ClassifiedScore = 250

	if _, err := eng.Run(context.Background(), state, ""); err == nil {
		t.Fatal("expected error for out-of-range initial score")
	}
}

func TestRunHaltHint(t *testing.T) {
	eng, _, stubs := testEngine(t)
	eng.RegisterStep(models.StepResolver, &stubStep{
		patch: models.Patch{ResolutionText: models.String("done"), ResolvedScore: models.Float(95)},
		next:  models.HintHalt,
	})

	result, err := eng.Run(context.Background(), testTicket(), "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Steps[len(result.Steps)-1] != models.StepResolver {
		t.Errorf("halt hint must stop the run at the resolver, Steps = %v", result.Steps)
	}
	if stubs[models.StepMemoryUpdater].calls != 0 {
		t.Error("memory updater must not run after a halt hint")
	}
}
