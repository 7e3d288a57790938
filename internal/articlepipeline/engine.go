package articlepipeline

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

// Config holds the tunables the engine needs to build and run a job. Every
// field has a spec-mandated default, applied by NewEngine when the zero
// value is supplied.
type Config struct {
	MaxRegenerationAttempts int
	AEOGateThreshold        int
	StageTimeoutDefault     time.Duration
	LLMStageTimeout         time.Duration
	EmbeddingStageTimeout   time.Duration
	URLValidateTimeout      time.Duration
	ImageStageTimeout       time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxRegenerationAttempts <= 0 {
		c.MaxRegenerationAttempts = 3
	}
	if c.AEOGateThreshold <= 0 {
		c.AEOGateThreshold = 80
	}
	if c.StageTimeoutDefault <= 0 {
		c.StageTimeoutDefault = 60 * time.Second
	}
	if c.LLMStageTimeout <= 0 {
		c.LLMStageTimeout = 120 * time.Second
	}
	if c.EmbeddingStageTimeout <= 0 {
		c.EmbeddingStageTimeout = 30 * time.Second
	}
	if c.URLValidateTimeout <= 0 {
		c.URLValidateTimeout = 10 * time.Second
	}
	if c.ImageStageTimeout <= 0 {
		c.ImageStageTimeout = 180 * time.Second
	}
	return c
}

// QualityAlert is one rule firing from a QualityRecorder observation.
type QualityAlert struct {
	Severity string
	Message  string
}

// QualityRecorder is the narrow surface batch.QualityMonitor exposes to the
// engine — kept as a local interface rather than importing internal/batch
// directly, matching the collaborator-interface pattern elsewhere in this
// package.
type QualityRecorder interface {
	Record(jobID string, aeoScore int, criticalIssueCount int) []QualityAlert
}

// SimilarityResult is what a SimilarityChecker reports back for Stage 12.
type SimilarityResult struct {
	CharSim      float64
	SemSim       *float64
	Hybrid       float64
	NearestJobID string
	Warning      bool
}

// SimilarityChecker is the narrow surface batch.SimilarityChecker exposes.
type SimilarityChecker interface {
	Check(ctx context.Context, jobID, batchID, keyword, body string, embed EmbeddingClient) (SimilarityResult, error)
}

// Engine runs one job's ExecutionContext through the full 13-stage pipeline.
type Engine struct {
	registry *StageRegistry
	scorer   AEOScorer
	quality  QualityRecorder
	cfg      Config
}

// NewEngine builds an Engine. scorer/quality may be nil, in which case the
// quality gate is skipped (useful for tests exercising only the generation
// path). The similarity checker, by contrast, is wired directly into the
// Stage 12 implementation by the StageFactory, since it is that stage's
// sole responsibility rather than something the engine orchestrates.
func NewEngine(registry *StageRegistry, scorer AEOScorer, quality QualityRecorder, cfg Config) *Engine {
	return &Engine{registry: registry, scorer: scorer, quality: quality, cfg: cfg.withDefaults()}
}

// Run executes the pipeline for one job to completion. It never returns an
// error for advisory or quality-gate conditions — only for a critical stage
// failure, a validation failure, or explicit cancellation — since those are
// the only conditions that should mark the job's terminal status as failed.
func (e *Engine) Run(ctx context.Context, ec *ExecutionContext) error {
	tracker := newProgressTracker(ec.ProgressCB)
	ec.ProgressCB = nil // tracker now owns reporting; runStage below reports through it

	if err := e.runSequentialPrefix(ctx, ec, tracker); err != nil {
		return err
	}

	e.runRefine(ctx, ec, tracker)

	if err := e.runFanOut(ctx, ec, tracker); err != nil {
		return err
	}

	if err := e.runStage(ctx, ec, tracker, StageMergeAndLink, 0); err != nil {
		return err
	}

	e.runQualityGate(ctx, ec, tracker)

	simDone := make(chan struct{})
	go func() {
		defer close(simDone)
		e.runSimilarity(ctx, ec, tracker)
	}()

	if err := e.runStage(ctx, ec, tracker, StagePersist, 0); err != nil {
		<-simDone
		return err
	}

	<-simDone
	return nil
}

// runStage dispatches a single stage by id, records its outcome, and
// returns a non-nil error only when that stage is critical.
func (e *Engine) runStage(ctx context.Context, ec *ExecutionContext, tracker *progressTracker, id StageID, attempt int) error {
	if err := ctx.Err(); err != nil {
		ec.AddError(newStageError(ErrorKindCritical, id, attempt, &CancelRequested{Stage: id}))
		return &CancelRequested{Stage: id}
	}
	stage, ok := e.registry.Get(id)
	if !ok {
		return &ConfigError{Message: "no stage registered for " + id.String()}
	}

	stageCtx, cancel := context.WithTimeout(ctx, e.timeoutFor(id))
	defer cancel()

	err := stage.Execute(stageCtx, ec)
	if err == nil {
		tracker.report(id, true, "")
		return nil
	}

	var valErr *ValidationFailure
	var cancelErr *CancelRequested
	var advErr *AdvisoryStageFailure
	switch {
	case errors.As(err, &valErr):
		ec.AddError(newStageError(ErrorKindValidation, id, attempt, err))
		tracker.report(id, true, "validation_failure")
		return err
	case errors.As(err, &cancelErr):
		ec.AddError(newStageError(ErrorKindCritical, id, attempt, err))
		tracker.report(id, true, "canceled")
		return err
	case errors.As(err, &advErr):
		ec.AddError(newStageError(ErrorKindAdvisory, id, attempt, err))
		tracker.report(id, true, "advisory_failure")
		return nil
	case stage.Critical():
		ec.AddError(newStageError(ErrorKindCritical, id, attempt, err))
		tracker.report(id, true, "critical_failure")
		return &CriticalStageFailure{Stage: id, Message: err.Error(), Cause: err}
	default:
		ec.AddError(newStageError(ErrorKindAdvisory, id, attempt, err))
		tracker.report(id, true, "advisory_failure")
		return nil
	}
}

func (e *Engine) timeoutFor(id StageID) time.Duration {
	switch id {
	case StageGenerate, StageRefine, StageFAQ:
		return e.cfg.LLMStageTimeout
	case StageSimilarity:
		return e.cfg.EmbeddingStageTimeout
	case StageCitations:
		return e.cfg.URLValidateTimeout
	case StageImage:
		return e.cfg.ImageStageTimeout
	default:
		return e.cfg.StageTimeoutDefault
	}
}

func (e *Engine) runSequentialPrefix(ctx context.Context, ec *ExecutionContext, tracker *progressTracker) error {
	for _, id := range []StageID{StageDataFetch, StagePromptBuild, StageGenerate, StageExtract} {
		if err := e.runStage(ctx, ec, tracker, id, ec.RegenerationAttempt); err != nil {
			return err
		}
	}
	return nil
}

// runRefine invokes Stage 3b unconditionally; a failure here is recorded as
// advisory and never aborts the job (spec.md §4.1: Refine is conditional in
// the sense that its output may be a no-op, not in the sense that the
// engine skips calling it).
func (e *Engine) runRefine(ctx context.Context, ec *ExecutionContext, tracker *progressTracker) {
	_ = e.runStage(ctx, ec, tracker, StageRefine, ec.RegenerationAttempt)
}

// runFanOut dispatches stages 4..9 concurrently via errgroup. Each stage
// writes only its own ParallelOutputs field, so no stage's failure affects
// another's — errgroup's shared cancellation is deliberately unused: every
// goroutine always runs to completion regardless of a sibling's error.
func (e *Engine) runFanOut(ctx context.Context, ec *ExecutionContext, tracker *progressTracker) error {
	if err := ctx.Err(); err != nil {
		return &CancelRequested{Stage: StageCitations}
	}
	// errgroup.Group, not its derived context: each goroutine always runs to
	// completion regardless of a sibling's error, so no cancellation signal
	// is wired through.
	var g errgroup.Group
	for _, s := range e.registry.FanOutStages() {
		s := s
		g.Go(func() error {
			_ = e.runStage(ctx, ec, tracker, s.ID(), ec.RegenerationAttempt)
			return nil
		})
	}
	return g.Wait()
}

// runQualityGate runs the scorer against ValidatedArticle and, if below
// threshold, restarts generation from Stage 2 up to MaxRegenerationAttempts
// times, keeping the attempt with the highest score (ties broken by most
// recent). The gate never fails the job: its worst outcome is a
// QualityUnderflow recorded as an advisory error.
func (e *Engine) runQualityGate(ctx context.Context, ec *ExecutionContext, tracker *progressTracker) {
	if e.scorer == nil || ec.ValidatedArticle == nil {
		return
	}

	type attemptResult struct {
		report  *QualityReport
		article ValidatedArticle
	}
	var best *attemptResult

	for attempt := 0; attempt <= e.cfg.MaxRegenerationAttempts; attempt++ {
		score, issues, err := e.scorer.Score(ctx, ec.ValidatedArticle)
		if err != nil {
			ec.AddError(newStageError(ErrorKindAdvisory, StageMergeAndLink, attempt, err))
			return
		}
		report := &QualityReport{AEOScore: score, CriticalIssues: issues, RegenerationAttempt: attempt}
		if best == nil || score >= best.report.AEOScore {
			best = &attemptResult{report: report, article: *ec.ValidatedArticle}
		}
		if score >= e.cfg.AEOGateThreshold || attempt == e.cfg.MaxRegenerationAttempts {
			break
		}

		ec.RegenerationAttempt = attempt + 1
		ec.RegenerationNeeded = true
		regenFailed := false
		for _, id := range []StageID{StageGenerate, StageExtract} {
			if err := e.runStage(ctx, ec, tracker, id, ec.RegenerationAttempt); err != nil {
				regenFailed = true
				break
			}
		}
		if regenFailed {
			break
		}
		e.runRefine(ctx, ec, tracker)
		if err := e.runFanOut(ctx, ec, tracker); err != nil {
			break
		}
		if err := e.runStage(ctx, ec, tracker, StageMergeAndLink, ec.RegenerationAttempt); err != nil {
			break
		}
	}

	if best == nil {
		return
	}
	ec.QualityReport = best.report
	*ec.ValidatedArticle = best.article

	if best.report.AEOScore < e.cfg.AEOGateThreshold {
		ec.AddError(newStageError(ErrorKindAdvisory, StageMergeAndLink, best.report.RegenerationAttempt,
			&QualityUnderflow{BestScore: best.report.AEOScore, Attempts: e.cfg.MaxRegenerationAttempts}))
	}

	if e.quality != nil {
		e.quality.Record(ec.JobID.String(), best.report.AEOScore, len(best.report.CriticalIssues))
	}
}

// runSimilarity runs Stage 12 after Stage 10 has produced a ValidatedArticle,
// independent of the quality gate and concurrent with Stage 11.
func (e *Engine) runSimilarity(ctx context.Context, ec *ExecutionContext, tracker *progressTracker) {
	if ec.ValidatedArticle == nil {
		return
	}
	_ = e.runStage(ctx, ec, tracker, StageSimilarity, 0)
}
