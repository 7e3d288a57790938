// Package aeoscorer is a placeholder AEO (answer-engine-optimization)
// scoring policy. The real scoring rubric is an external, evolving
// concern the pipeline deliberately does not own (spec's quality-gate
// design leaves scoring policy outside the orchestrator); this heuristic
// stub exists so the engine and its quality gate are exercisable without a
// production scoring service wired in.
package aeoscorer

import (
	"context"
	"strings"

	"github.com/yungbote/articlegen-backend/internal/articlepipeline"
)

// HeuristicScorer derives a rough score from structural signals: presence
// of a direct answer, section count, FAQ coverage, and citation count. It
// is intentionally simple — a stand-in for a real scoring service, not an
// attempt to approximate one.
type HeuristicScorer struct{}

var _ articlepipeline.AEOScorer = (*HeuristicScorer)(nil)

func NewHeuristicScorer() *HeuristicScorer { return &HeuristicScorer{} }

func (s *HeuristicScorer) Score(ctx context.Context, article *articlepipeline.ValidatedArticle) (int, []string, error) {
	score := 40
	var issues []string

	if strings.TrimSpace(article.DirectAnswer) != "" {
		score += 15
	} else {
		issues = append(issues, "missing a direct-answer lead")
	}

	if len(article.Sections) >= 3 {
		score += 15
	} else {
		issues = append(issues, "fewer than 3 sections")
	}

	if len(article.FAQItems) > 0 {
		score += 10
	} else {
		issues = append(issues, "no FAQ block")
	}

	if len(article.Sources) > 0 {
		score += 10
	} else {
		issues = append(issues, "no cited sources")
	}

	if len(article.KeyTakeaways) > 0 {
		score += 10
	} else {
		issues = append(issues, "no key takeaways")
	}

	if score > 100 {
		score = 100
	}
	return score, issues, nil
}
