package articlepipeline

import (
	"context"
	"strings"
)

// extractStage (3) parses the raw markdown the LLM returned into the
// typed StructuredData the rest of the pipeline works with. Deterministic
// on purpose: re-running generation is expensive, so the boundary between
// "ask the model" and "parse what it said" stays a plain text scan rather
// than another LLM round trip.
type extractStage struct {
	baseStage
}

func newExtractStage() Stage {
	return &extractStage{baseStage: baseStage{id: StageExtract, name: "Extract", critical: false}}
}

func (s *extractStage) Execute(ctx context.Context, ec *ExecutionContext) error {
	if strings.TrimSpace(ec.RawArticle) == "" {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "raw article is empty, nothing to extract"}
	}

	data := StructuredData{}
	lines := strings.Split(ec.RawArticle, "\n")

	var currentSection *ArticleSection
	var body strings.Builder

	flush := func() {
		if currentSection != nil {
			currentSection.Content = strings.TrimSpace(body.String())
			data.Sections = append(data.Sections, *currentSection)
		}
		body.Reset()
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "# ") && data.Headline == "":
			data.Headline = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		case strings.HasPrefix(trimmed, "## "):
			flush()
			title := strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))
			currentSection = &ArticleSection{Title: title}
		default:
			if currentSection != nil {
				body.WriteString(line)
				body.WriteString("\n")
			} else if data.Intro == "" && trimmed != "" {
				data.Intro = trimmed
			}
		}
	}
	flush()

	if data.Headline == "" {
		data.Headline = ec.Config.Keyword
	}
	data.Teaser = firstSentence(data.Intro)
	data.DirectAnswer = data.Teaser
	data.MetaTitle = data.Headline
	data.MetaDescription = data.Teaser

	ec.StructuredData = data
	if len(data.Sections) == 0 {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "no ## sections found in generated markdown"}
	}
	return nil
}

func firstSentence(s string) string {
	idx := strings.IndexAny(s, ".!?")
	if idx < 0 {
		return s
	}
	return strings.TrimSpace(s[:idx+1])
}
