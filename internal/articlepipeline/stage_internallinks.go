package articlepipeline

import "context"

// internalLinksStage (5) sources candidate internal links from the
// configured LinkProvider (typically a sitemap crawl of the target
// company's site) to surface alongside the article.
type internalLinksStage struct {
	baseStage
	links LinkProvider
}

func newInternalLinksStage(links LinkProvider) Stage {
	return &internalLinksStage{baseStage: baseStage{id: StageInternalLinks, name: "InternalLinks", critical: false}, links: links}
}

func (s *internalLinksStage) Execute(ctx context.Context, ec *ExecutionContext) error {
	if s.links == nil {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "no link provider configured"}
	}

	candidates, err := s.links.Candidates(ctx, ec.CompanyData.URL, ec.Config.Keyword)
	if err != nil {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "link candidate lookup failed", Cause: err}
	}

	const maxLinks = 5
	var links []InternalLink
	for _, c := range candidates {
		if len(links) >= maxLinks {
			break
		}
		links = append(links, InternalLink{URL: c.URL, Title: c.Title})
	}

	if len(links) == 0 {
		return &AdvisoryStageFailure{Stage: s.ID(), Message: "no internal link candidates returned"}
	}

	ec.Parallel.InternalLinksList = links
	return nil
}
