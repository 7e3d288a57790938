package articlepipeline

import (
	"context"
	"fmt"
)

// generateStage (2, critical) calls the LLM with the assembled prompt and
// stores the raw response for Stage 3 to parse. A failure here is always
// critical: there is no article without a generation.
type generateStage struct {
	baseStage
	llm LLMClient
}

func newGenerateStage(llm LLMClient) Stage {
	return &generateStage{baseStage: baseStage{id: StageGenerate, name: "Generate", critical: true}, llm: llm}
}

func (s *generateStage) Execute(ctx context.Context, ec *ExecutionContext) error {
	if s.llm == nil {
		return &CriticalStageFailure{Stage: s.ID(), Message: "no LLM client configured"}
	}

	resp, err := s.llm.Generate(ctx, LLMRequest{
		SystemInstruction: "You are an expert long-form SEO/AEO content writer.",
		Prompt:            ec.Prompt,
		Temperature:       0.7,
	})
	if err != nil {
		return &CriticalStageFailure{Stage: s.ID(), Message: fmt.Sprintf("generation failed: %v", err), Cause: err}
	}
	if resp.Text == "" {
		return &CriticalStageFailure{Stage: s.ID(), Message: "generation returned empty text"}
	}

	ec.RawArticle = resp.Text
	return nil
}
