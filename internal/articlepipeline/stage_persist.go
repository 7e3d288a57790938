package articlepipeline

import (
	"context"
	"encoding/json"
	"fmt"
)

// persistStage (11, critical) writes the validated article and its
// derived exports to storage. Its Execute method narrows the
// ExecutionContext down to a ValidatedArticle value plus a QualityReport/
// StageError snapshot taken at call time, and hands those to
// persistArticle, which never sees the owning ExecutionContext itself. The
// engine runs the quality gate to completion before Stage 11 starts, so the
// QualityReport it receives is final. Persist and Similarity overlap in the
// engine, so the snapshot is a point-in-time copy, not a live view.
type persistStage struct {
	baseStage
	storage  Storage
	renderer Renderer
}

func newPersistStage(storage Storage, renderer Renderer) Stage {
	return &persistStage{baseStage: baseStage{id: StagePersist, name: "Persist", critical: true}, storage: storage, renderer: renderer}
}

func (s *persistStage) Execute(ctx context.Context, ec *ExecutionContext) error {
	if ec.ValidatedArticle == nil {
		return &CriticalStageFailure{Stage: s.ID(), Message: "no validated article to persist"}
	}
	article := *ec.ValidatedArticle
	jobID := ec.JobID.String()

	result, err := persistArticle(ctx, s.storage, s.renderer, jobID, article, ec.QualityReport, ec.Errors())
	if err != nil {
		return &CriticalStageFailure{Stage: s.ID(), Message: fmt.Sprintf("persist failed: %v", err), Cause: err}
	}
	ec.StorageResult = result
	return nil
}

// persistArticle writes the per-job output layout:
//
//	<jobID>/article.json         - the ValidatedArticle, verbatim
//	<jobID>/article.html         - rendered HTML export
//	<jobID>/citations.json       - sources, separately addressable
//	<jobID>/quality_report.json  - the quality gate's verdict, if any ran
//	<jobID>/errors.json          - the accumulated stage-error log, if non-empty
func persistArticle(ctx context.Context, storage Storage, renderer Renderer, jobID string, article ValidatedArticle, quality *QualityReport, errs []StageError) (*StorageResult, error) {
	if storage == nil {
		return nil, fmt.Errorf("no storage backend configured")
	}

	locations := make(map[string]string, 5)

	articleJSON, err := json.Marshal(article)
	if err != nil {
		return nil, fmt.Errorf("marshal article: %w", err)
	}
	loc, err := storage.Put(ctx, jobID, "article.json", articleJSON, "application/json")
	if err != nil {
		return nil, fmt.Errorf("put article.json: %w", err)
	}
	locations["article_json"] = loc

	if renderer != nil {
		html, err := renderer.RenderHTML(&article)
		if err != nil {
			return nil, fmt.Errorf("render html: %w", err)
		}
		loc, err := storage.Put(ctx, jobID, "article.html", []byte(html), "text/html")
		if err != nil {
			return nil, fmt.Errorf("put article.html: %w", err)
		}
		locations["article_html"] = loc
	}

	if len(article.Sources) > 0 {
		citJSON, err := json.Marshal(article.Sources)
		if err != nil {
			return nil, fmt.Errorf("marshal citations: %w", err)
		}
		loc, err := storage.Put(ctx, jobID, "citations.json", citJSON, "application/json")
		if err != nil {
			return nil, fmt.Errorf("put citations.json: %w", err)
		}
		locations["citations_json"] = loc
	}

	if quality != nil {
		qualityJSON, err := json.Marshal(quality)
		if err != nil {
			return nil, fmt.Errorf("marshal quality report: %w", err)
		}
		loc, err := storage.Put(ctx, jobID, "quality_report.json", qualityJSON, "application/json")
		if err != nil {
			return nil, fmt.Errorf("put quality_report.json: %w", err)
		}
		locations["quality_report_json"] = loc
	}

	if len(errs) > 0 {
		errsJSON, err := json.Marshal(errs)
		if err != nil {
			return nil, fmt.Errorf("marshal errors: %w", err)
		}
		loc, err := storage.Put(ctx, jobID, "errors.json", errsJSON, "application/json")
		if err != nil {
			return nil, fmt.Errorf("put errors.json: %w", err)
		}
		locations["errors_json"] = loc
	}

	return &StorageResult{Locations: locations}, nil
}
