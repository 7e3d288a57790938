package articlepipeline

import (
	"context"
	"fmt"
	"regexp"
)

// citationsStage (4) extracts grounding-source URLs already present on the
// ExecutionContext (populated at Stage 2/3 from the model's cited sources,
// when the model surfaces them inline as bare URLs) and validates each one
// resolves, numbering the survivors for Stage 10's marker-linking pass.
type citationsStage struct {
	baseStage
	validator URLValidator
}

var bareURLPattern = regexp.MustCompile(`https?://[^\s)\]]+`)

func newCitationsStage(validator URLValidator) Stage {
	return &citationsStage{baseStage: baseStage{id: StageCitations, name: "Citations", critical: false}, validator: validator}
}

func (s *citationsStage) Execute(ctx context.Context, ec *ExecutionContext) error {
	candidates := ec.GroundingSources
	if len(candidates) == 0 {
		candidates = bareURLPattern.FindAllString(ec.RawArticle, -1)
	}
	if len(candidates) == 0 {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "no candidate citation URLs found"}
	}

	seen := make(map[string]bool, len(candidates))
	var citations []Citation
	n := 1
	for _, url := range candidates {
		if seen[url] {
			continue
		}
		seen[url] = true

		finalURL := url
		if s.validator != nil {
			status, resolved, err := s.validator.Head(ctx, url, 0)
			if err != nil || status >= 400 {
				continue
			}
			finalURL = resolved
		}

		citations = append(citations, Citation{N: n, Title: finalURL, URL: finalURL})
		n++
	}

	if len(citations) == 0 {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "no citation URLs validated successfully"}
	}

	ec.Parallel.CitationsList = citations
	ec.Parallel.CitationsHTML = renderCitationsHTML(citations)
	return nil
}

func renderCitationsHTML(citations []Citation) string {
	html := "<ol class=\"citations\">"
	for _, c := range citations {
		html += fmt.Sprintf(`<li id="cite-%d"><a href="%s" target="_blank" rel="noopener noreferrer">%s</a></li>`, c.N, c.URL, c.Title)
	}
	html += "</ol>"
	return html
}
