package articlepipeline

import (
	"context"
	"fmt"
	"strings"
)

// dataFetchStage (0, critical) resolves the caller-supplied company_url
// into the CompanyData a prompt can be grounded on. Failure here is
// critical: without a resolvable company context there is nothing to write
// about.
type dataFetchStage struct {
	baseStage
	links LinkProvider
}

func newDataFetchStage(links LinkProvider) Stage {
	return &dataFetchStage{baseStage: baseStage{id: StageDataFetch, name: "DataFetch", critical: true}, links: links}
}

func (s *dataFetchStage) Execute(ctx context.Context, ec *ExecutionContext) error {
	url := strings.TrimSpace(ec.Config.CompanyURL)
	if url == "" {
		return &CriticalStageFailure{Stage: s.ID(), Message: "company_url is empty"}
	}

	name := ec.Config.CompanyName
	if name == "" {
		name = deriveCompanyName(url)
	}

	ec.CompanyData = CompanyData{
		Name: name,
		URL:  url,
	}
	ec.Language = ec.Config.Language
	if ec.Language == "" {
		ec.Language = "en"
	}

	if s.links != nil {
		candidates, err := s.links.Candidates(ctx, url, ec.Config.Keyword)
		if err != nil {
			// Advisory: internal-link sourcing is not required to ground the
			// prompt, only Stage 5 depends on it.
			return &AdvisoryStageFailure{Stage: s.ID(), Message: fmt.Sprintf("sitemap fetch failed: %v", err), Cause: err}
		}
		for _, c := range candidates {
			ec.CompanyData.SitemapURLs = append(ec.CompanyData.SitemapURLs, c.URL)
		}
	}

	return nil
}

func deriveCompanyName(url string) string {
	u := strings.TrimPrefix(url, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "www.")
	if i := strings.Index(u, "/"); i >= 0 {
		u = u[:i]
	}
	if i := strings.LastIndex(u, "."); i >= 0 {
		u = u[:i]
	}
	return strings.Title(strings.ReplaceAll(u, "-", " "))
}
