// Package linkprovider sources internal-link candidates for a company's
// site via a sitemap crawl, parsed with goquery the same way the rest of
// this codebase's HTML ingestion does CSS-selector extraction.
package linkprovider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/yungbote/articlegen-backend/internal/articlepipeline"
)

// SitemapProvider fetches a site's sitemap.xml and surfaces each <loc> as a
// link candidate, titled from the URL's last path segment. No other page is
// tried when the sitemap is missing.
type SitemapProvider struct {
	httpClient *http.Client
}

var _ articlepipeline.LinkProvider = (*SitemapProvider)(nil)

func NewSitemapProvider() *SitemapProvider {
	return &SitemapProvider{httpClient: &http.Client{Timeout: 15 * time.Second}}
}

// Candidates fetches companyURL's sitemap.xml, parses every <loc> entry
// with goquery (treating the sitemap as XML-as-markup, which goquery's
// underlying parser tolerates), and returns a bounded candidate list. A
// fetch failure is returned as an error — callers treat this as advisory.
func (p *SitemapProvider) Candidates(ctx context.Context, companyURL string, keyword string) ([]articlepipeline.LinkCandidate, error) {
	sitemapURL := strings.TrimRight(companyURL, "/") + "/sitemap.xml"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build sitemap request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch sitemap: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}

	const maxCandidates = 50
	var candidates []articlepipeline.LinkCandidate
	doc.Find("url loc, sitemap loc").Each(func(i int, s *goquery.Selection) {
		if len(candidates) >= maxCandidates {
			return
		}
		loc := strings.TrimSpace(s.Text())
		if loc == "" {
			return
		}
		candidates = append(candidates, articlepipeline.LinkCandidate{
			Title: titleFromURL(loc),
			URL:   loc,
		})
	})

	if len(candidates) == 0 {
		return nil, fmt.Errorf("sitemap at %s had no <loc> entries", sitemapURL)
	}
	return candidates, nil
}

func titleFromURL(u string) string {
	trimmed := strings.TrimSuffix(u, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return trimmed
	}
	slug := trimmed[idx+1:]
	slug = strings.ReplaceAll(slug, "-", " ")
	slug = strings.ReplaceAll(slug, "_", " ")
	return strings.TrimSpace(slug)
}
