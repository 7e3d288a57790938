package articlepipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
)

// recordingStage marks itself as having run on the ExecutionContext and
// optionally fails, so engine tests can assert on dispatch order and
// failure-kind handling without needing a real collaborator.
type recordingStage struct {
	baseStage
	fn func(ec *ExecutionContext) error

	mu  sync.Mutex
	ran int
}

func newRecordingStage(id StageID, critical bool, fn func(ec *ExecutionContext) error) *recordingStage {
	return &recordingStage{baseStage: baseStage{id: id, name: id.String(), critical: critical}, fn: fn}
}

func (s *recordingStage) Execute(ctx context.Context, ec *ExecutionContext) error {
	s.mu.Lock()
	s.ran++
	s.mu.Unlock()
	if s.fn == nil {
		return nil
	}
	return s.fn(ec)
}

func (s *recordingStage) runCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ran
}

// buildHappyPathRegistry wires every required stage to a no-op success,
// except StageMergeAndLink, which populates a minimal ValidatedArticle so
// downstream stages (quality gate, Persist, Similarity) have something to
// work with.
func buildHappyPathRegistry(t *testing.T, overrides map[StageID]*recordingStage) (*StageRegistry, map[StageID]*recordingStage) {
	t.Helper()
	stages := map[StageID]*recordingStage{}
	for _, id := range requiredStageIDs {
		critical := criticalStageIDs[id]
		var fn func(ec *ExecutionContext) error
		if id == StageMergeAndLink {
			fn = func(ec *ExecutionContext) error {
				ec.ValidatedArticle = &ValidatedArticle{Headline: "h"}
				return nil
			}
		}
		stages[id] = newRecordingStage(id, critical, fn)
	}
	for id, s := range overrides {
		stages[id] = s
	}

	list := make([]Stage, 0, len(stages))
	for _, s := range stages {
		list = append(list, s)
	}
	reg, err := newStageRegistry(list)
	if err != nil {
		t.Fatalf("newStageRegistry: %v", err)
	}
	return reg, stages
}

func TestEngineRunHappyPathRunsEveryRequiredStage(t *testing.T) {
	reg, stages := buildHappyPathRegistry(t, nil)
	engine := NewEngine(reg, nil, nil, Config{})
	ec := NewExecutionContext(uuid.New(), JobConfig{Keyword: "k"}, nil)

	if err := engine.Run(context.Background(), ec); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, id := range requiredStageIDs {
		if stages[id].runCount() != 1 {
			t.Fatalf("expected stage %s to run exactly once, ran %d times", id, stages[id].runCount())
		}
	}
	if ec.HasCriticalError() {
		t.Fatalf("expected no critical errors, got %+v", ec.Errors())
	}
}

func TestEngineRunCriticalFailureAbortsBeforeFanOut(t *testing.T) {
	overrides := map[StageID]*recordingStage{
		StageGenerate: newRecordingStage(StageGenerate, true, func(ec *ExecutionContext) error {
			return &CriticalStageFailure{Stage: StageGenerate, Message: "boom"}
		}),
	}
	reg, stages := buildHappyPathRegistry(t, overrides)
	engine := NewEngine(reg, nil, nil, Config{})
	ec := NewExecutionContext(uuid.New(), JobConfig{Keyword: "k"}, nil)

	err := engine.Run(context.Background(), ec)
	if err == nil {
		t.Fatalf("expected Run to return an error on critical stage failure")
	}
	if stages[StageCitations].runCount() != 0 {
		t.Fatalf("expected fan-out stages never dispatched after a critical failure upstream")
	}
	if !ec.HasCriticalError() {
		t.Fatalf("expected a critical error recorded on the ExecutionContext")
	}
}

func TestEngineRunAdvisoryFanOutFailureDoesNotAbortJob(t *testing.T) {
	overrides := map[StageID]*recordingStage{
		StageFAQ: newRecordingStage(StageFAQ, false, func(ec *ExecutionContext) error {
			return &AdvisoryStageFailure{Stage: StageFAQ, Message: "llm timeout"}
		}),
	}
	reg, stages := buildHappyPathRegistry(t, overrides)
	engine := NewEngine(reg, nil, nil, Config{})
	ec := NewExecutionContext(uuid.New(), JobConfig{Keyword: "k"}, nil)

	if err := engine.Run(context.Background(), ec); err != nil {
		t.Fatalf("Run: expected advisory failure not to abort the job, got %v", err)
	}
	if stages[StagePersist].runCount() != 1 {
		t.Fatalf("expected Persist to still run after an advisory fan-out failure")
	}
	if ec.HasCriticalError() {
		t.Fatalf("expected only an advisory error, got critical: %+v", ec.Errors())
	}
}

func TestEngineRunRefineFailureIsAdvisoryOnly(t *testing.T) {
	overrides := map[StageID]*recordingStage{
		StageRefine: newRecordingStage(StageRefine, false, func(ec *ExecutionContext) error {
			return &AdvisoryStageFailure{Stage: StageRefine, Message: "refine failed"}
		}),
	}
	reg, stages := buildHappyPathRegistry(t, overrides)
	engine := NewEngine(reg, nil, nil, Config{})
	ec := NewExecutionContext(uuid.New(), JobConfig{Keyword: "k"}, nil)

	if err := engine.Run(context.Background(), ec); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stages[StageCitations].runCount() != 1 {
		t.Fatalf("expected fan-out to still dispatch after an advisory Refine failure")
	}
}

// stubScorer always reports a fixed score so the quality gate's
// regeneration loop is exercised deterministically.
type stubScorer struct {
	score  int
	issues []string
}

func (s stubScorer) Score(ctx context.Context, article *ValidatedArticle) (int, []string, error) {
	return s.score, s.issues, nil
}

func TestEngineRunQualityGateRegeneratesBelowThreshold(t *testing.T) {
	reg, stages := buildHappyPathRegistry(t, nil)
	engine := NewEngine(reg, stubScorer{score: 50}, nil, Config{MaxRegenerationAttempts: 1, AEOGateThreshold: 80})
	ec := NewExecutionContext(uuid.New(), JobConfig{Keyword: "k"}, nil)

	if err := engine.Run(context.Background(), ec); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// one initial pass plus one regeneration attempt.
	if stages[StageGenerate].runCount() != 2 {
		t.Fatalf("expected Generate to run twice (initial + 1 regeneration), ran %d times", stages[StageGenerate].runCount())
	}
	if ec.QualityReport == nil || ec.QualityReport.AEOScore != 50 {
		t.Fatalf("expected a quality report with the scorer's score, got %+v", ec.QualityReport)
	}
	if !ec.HasCriticalError() && len(ec.Errors()) == 0 {
		t.Fatalf("expected a QualityUnderflow advisory error recorded")
	}
}

func TestEngineRunQualityGateStopsOnceThresholdCleared(t *testing.T) {
	reg, stages := buildHappyPathRegistry(t, nil)
	engine := NewEngine(reg, stubScorer{score: 90}, nil, Config{MaxRegenerationAttempts: 3, AEOGateThreshold: 80})
	ec := NewExecutionContext(uuid.New(), JobConfig{Keyword: "k"}, nil)

	if err := engine.Run(context.Background(), ec); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stages[StageGenerate].runCount() != 1 {
		t.Fatalf("expected Generate to run once when the gate clears on the first pass, ran %d times", stages[StageGenerate].runCount())
	}
}

func TestEngineRunContextCanceledBeforeStart(t *testing.T) {
	reg, _ := buildHappyPathRegistry(t, nil)
	engine := NewEngine(reg, nil, nil, Config{})
	ec := NewExecutionContext(uuid.New(), JobConfig{Keyword: "k"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := engine.Run(ctx, ec); err == nil {
		t.Fatalf("expected Run to fail immediately on an already-canceled context")
	}
}
