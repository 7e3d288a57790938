package articlepipeline

import (
	"context"
	"strings"
)

// refineStage ("3b") is invoked on every run but only rewrites the draft
// when a concrete defect is detected (fewer than two sections, an empty
// intro, or a body under 70% of the requested word count). When nothing needs
// fixing it is a no-op — that is the "conditional" half of its behavior,
// not whether the engine calls it.
type refineStage struct {
	baseStage
	llm LLMClient
}

func newRefineStage(llm LLMClient) Stage {
	return &refineStage{baseStage: baseStage{id: StageRefine, name: "Refine", critical: false}, llm: llm}
}

func (s *refineStage) Execute(ctx context.Context, ec *ExecutionContext) error {
	if !needsRefinement(ec) {
		return nil
	}
	if s.llm == nil {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "refinement needed but no LLM client configured"}
	}

	prompt := buildRefinePrompt(ec)
	resp, err := s.llm.Generate(ctx, LLMRequest{
		SystemInstruction: "You revise long-form articles to fix specific structural defects without changing their topic.",
		Prompt:            prompt,
		Temperature:       0.5,
	})
	if err != nil {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "refinement generation failed", Cause: err}
	}
	if strings.TrimSpace(resp.Text) == "" {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "refinement returned empty text"}
	}

	ec.RawArticle = resp.Text
	ec.RefinementApplied = true

	extract := newExtractStage()
	if err := extract.Execute(ctx, ec); err != nil {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "re-extraction after refinement failed", Cause: err}
	}
	return nil
}

func needsRefinement(ec *ExecutionContext) bool {
	if len(ec.StructuredData.Sections) < 2 {
		return true
	}
	if strings.TrimSpace(ec.StructuredData.Intro) == "" {
		return true
	}
	wordCount := 0
	for _, sec := range ec.StructuredData.Sections {
		wordCount += len(strings.Fields(sec.Content))
	}
	if ec.Config.WordCount > 0 && wordCount < ec.Config.WordCount*7/10 {
		return true
	}
	return false
}

func buildRefinePrompt(ec *ExecutionContext) string {
	var b strings.Builder
	b.WriteString("The following article draft needs revision:\n\n")
	b.WriteString(ec.RawArticle)
	b.WriteString("\n\nIssues to fix:\n")
	if len(ec.StructuredData.Sections) < 2 {
		b.WriteString("- Add more distinct sections (## headings).\n")
	}
	if strings.TrimSpace(ec.StructuredData.Intro) == "" {
		b.WriteString("- Add a clear introductory paragraph before the first section.\n")
	}
	if ec.Config.WordCount > 0 {
		b.WriteString("- Expand the body to reach the target word count.\n")
	}
	b.WriteString("\nReturn the full revised article in the same markdown format.\n")
	return b.String()
}
