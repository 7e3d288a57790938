package articlepipeline

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// similarityStage (12) runs after Stage 10 and is non-blocking: it never
// fails the job, only ever records an AdvisoryStageFailure when the
// checker returns an error or the report write fails. The batch checker
// returns no error when the embedding call fails: it scores on character
// similarity alone, and no advisory error is recorded. It also owns writing its own
// similarity_report.json, since Stage 11 (Persist) runs concurrently with
// this stage and has no view of a report that isn't computed yet.
type similarityStage struct {
	baseStage
	embed   EmbeddingClient
	checker SimilarityChecker
	storage Storage
}

func newSimilarityStage(embed EmbeddingClient, checker SimilarityChecker, storage Storage) Stage {
	return &similarityStage{baseStage: baseStage{id: StageSimilarity, name: "Similarity", critical: false}, embed: embed, checker: checker, storage: storage}
}

func (s *similarityStage) Execute(ctx context.Context, ec *ExecutionContext) error {
	if s.checker == nil || ec.ValidatedArticle == nil {
		return nil
	}

	body := flattenBodyForSimilarity(ec.ValidatedArticle)
	result, err := s.checker.Check(ctx, ec.JobID.String(), ec.BatchID, ec.Config.Keyword, body, s.embed)
	if err != nil {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "similarity check failed", Cause: err}
	}

	report := &SimilarityReport{CharSim: result.CharSim, SemSim: result.SemSim, Hybrid: result.Hybrid}
	if result.NearestJobID != "" {
		if id, err := uuid.Parse(result.NearestJobID); err == nil {
			report.NearestJobID = &id
		}
	}
	ec.SimilarityReport = report

	if s.storage != nil {
		if reportJSON, err := json.Marshal(report); err == nil {
			if _, err := s.storage.Put(ctx, ec.JobID.String(), "similarity_report.json", reportJSON, "application/json"); err != nil {
				return &AdvisoryStageFailure{Stage: s.ID(), Message: "persist similarity report failed", Cause: err}
			}
		}
	}
	return nil
}

func flattenBodyForSimilarity(article *ValidatedArticle) string {
	var b strings.Builder
	b.WriteString(article.Headline)
	b.WriteString("\n")
	b.WriteString(article.Intro)
	for _, sec := range article.Sections {
		b.WriteString("\n")
		b.WriteString(sec.Content)
	}
	return b.String()
}
