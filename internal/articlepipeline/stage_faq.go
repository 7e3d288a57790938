package articlepipeline

import (
	"context"
	"strings"
)

// faqStage (8) generates a short People-Also-Ask style FAQ block. It
// reuses any PAA items the model already produced at Stage 2/3; only when
// none exist does it fall back to an LLM call, keeping the common path
// free of an extra model round trip.
type faqStage struct {
	baseStage
	llm LLMClient
}

func newFAQStage(llm LLMClient) Stage {
	return &faqStage{baseStage: baseStage{id: StageFAQ, name: "FAQ", critical: false}, llm: llm}
}

func (s *faqStage) Execute(ctx context.Context, ec *ExecutionContext) error {
	if len(ec.StructuredData.PAAItems) > 0 {
		ec.Parallel.FAQItems = ec.StructuredData.PAAItems
		ec.Parallel.PAAItems = ec.StructuredData.PAAItems
		return nil
	}

	if s.llm == nil {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "no FAQ items in draft and no LLM client configured"}
	}

	var b strings.Builder
	b.WriteString("Generate 4 frequently-asked-questions with concise answers for an article about: ")
	b.WriteString(ec.Config.Keyword)
	b.WriteString(".\nReturn each as \"Q: ...\" followed by \"A: ...\" on the next line.")

	resp, err := s.llm.Generate(ctx, LLMRequest{Prompt: b.String(), Temperature: 0.6})
	if err != nil {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "FAQ generation failed", Cause: err}
	}

	items := parseQAPairs(resp.Text)
	if len(items) == 0 {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "FAQ generation returned no parseable Q/A pairs"}
	}

	ec.Parallel.FAQItems = items
	ec.Parallel.PAAItems = items
	return nil
}

func parseQAPairs(text string) []QAPair {
	var pairs []QAPair
	lines := strings.Split(text, "\n")
	var pending QAPair
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "Q:"):
			if pending.Question != "" && pending.Answer != "" {
				pairs = append(pairs, pending)
			}
			pending = QAPair{Question: strings.TrimSpace(strings.TrimPrefix(trimmed, "Q:"))}
		case strings.HasPrefix(trimmed, "A:"):
			pending.Answer = strings.TrimSpace(strings.TrimPrefix(trimmed, "A:"))
		}
	}
	if pending.Question != "" && pending.Answer != "" {
		pairs = append(pairs, pending)
	}
	return pairs
}
