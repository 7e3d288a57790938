package articlepipeline

import (
	"context"
	"fmt"
	"strings"
)

// promptBuildStage (1) assembles the single prompt string Stage 2 sends to
// the LLM, from the job config, company context, and any caller-supplied
// system prompts.
type promptBuildStage struct {
	baseStage
}

func newPromptBuildStage() Stage {
	return &promptBuildStage{baseStage: baseStage{id: StagePromptBuild, name: "PromptBuild", critical: false}}
}

func (s *promptBuildStage) Execute(ctx context.Context, ec *ExecutionContext) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a long-form article targeting the keyword %q.\n", ec.Config.Keyword)
	fmt.Fprintf(&b, "Company: %s (%s)\n", ec.CompanyData.Name, ec.CompanyData.URL)
	if ec.Config.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", ec.Config.Tone)
	}
	if ec.Config.WordCount > 0 {
		fmt.Fprintf(&b, "Target word count: %d\n", ec.Config.WordCount)
	}
	if ec.Config.Country != "" {
		fmt.Fprintf(&b, "Audience country: %s\n", ec.Config.Country)
	}
	fmt.Fprintf(&b, "Language: %s\n", ec.Language)

	for _, extra := range ec.Config.SystemPrompts {
		b.WriteString(extra)
		b.WriteString("\n")
	}

	if ec.RegenerationAttempt > 0 && ec.QualityReport != nil {
		fmt.Fprintf(&b, "\nThis is regeneration attempt %d. The previous draft scored %d and had these issues: %s. Address them directly.\n",
			ec.RegenerationAttempt, ec.QualityReport.AEOScore, strings.Join(ec.QualityReport.CriticalIssues, "; "))
	}

	ec.Prompt = b.String()
	return nil
}
