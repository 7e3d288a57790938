// Package handler adapts the article generation pipeline to the job queue's
// runtime.Handler contract, the same wiring shape the teacher's own
// pipeline handlers use: decode payload, build an ExecutionContext, run it,
// translate the outcome into runtime.Context's Progress/Fail/Succeed calls.
package handler

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/articlegen-backend/internal/articlepipeline"
	"github.com/yungbote/articlegen-backend/internal/jobs/runtime"
)

const JobType = "article_generation"

// ArticleHandler runs one article-generation job to completion using a
// shared, process-wide Engine built once at startup.
type ArticleHandler struct {
	engine *articlepipeline.Engine
}

func NewArticleHandler(engine *articlepipeline.Engine) *ArticleHandler {
	return &ArticleHandler{engine: engine}
}

var _ runtime.Handler = (*ArticleHandler)(nil)

func (h *ArticleHandler) Type() string { return JobType }

func (h *ArticleHandler) Run(jc *runtime.Context) error {
	var cfg articlepipeline.JobConfig
	raw, err := json.Marshal(jc.Payload())
	if err != nil {
		jc.Fail("decode", fmt.Errorf("marshal payload: %w", err))
		return err
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		jc.Fail("decode", fmt.Errorf("decode job config: %w", err))
		return err
	}
	if cfg.Keyword == "" || cfg.CompanyURL == "" {
		err := fmt.Errorf("keyword and company_url are required")
		jc.Fail("decode", err)
		return err
	}

	jobID := uuid.Nil
	if jc.Job != nil {
		jobID = jc.Job.ID
	}

	progressCB := func(stage articlepipeline.StageID, percent int, done bool, errTag string) {
		msg := stage.String()
		if errTag != "" {
			msg = fmt.Sprintf("%s (%s)", msg, errTag)
		}
		jc.Progress(stage.String(), percent, msg)
	}

	ec := articlepipeline.NewExecutionContext(jobID, cfg, progressCB)

	if err := h.engine.Run(jc.Ctx, ec); err != nil {
		jc.Fail(lastStageName(ec), err)
		return err
	}

	jc.Succeed("done", buildResult(ec))
	return nil
}

func lastStageName(ec *articlepipeline.ExecutionContext) string {
	errs := ec.Errors()
	if len(errs) == 0 {
		return "unknown"
	}
	return errs[len(errs)-1].StageName
}

// jobResult is the shape persisted to job_run.result: the full validated
// article plus its storage locations and the observability-only reports.
// Article is the only read path back to the generated content — there is
// no GCS-read endpoint, so GetJob serves it straight from this blob.
type jobResult struct {
	Article    *articlepipeline.ValidatedArticle `json:"article,omitempty"`
	Storage    *articlepipeline.StorageResult    `json:"storage,omitempty"`
	Quality    *articlepipeline.QualityReport    `json:"quality,omitempty"`
	Similarity *articlepipeline.SimilarityReport `json:"similarity,omitempty"`
	Errors     []articlepipeline.StageError      `json:"errors,omitempty"`
}

func buildResult(ec *articlepipeline.ExecutionContext) jobResult {
	return jobResult{
		Article:    ec.ValidatedArticle,
		Storage:    ec.StorageResult,
		Quality:    ec.QualityReport,
		Similarity: ec.SimilarityReport,
		Errors:     ec.Errors(),
	}
}
