package articlepipeline

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// mergeStage (10, critical) is the single point where the sequential
// draft and the six parallel enrichment outputs become one flat,
// link-resolved ValidatedArticle. It runs five steps in order: Overlay,
// LinkCitations, SweepMarkers, Flatten, Validate. A failure at Validate is
// a *ValidationFailure (critical); every earlier step degrades gracefully
// since its inputs may be partially missing (an advisory stage upstream
// may have failed and left its ParallelOutputs field empty).
type mergeStage struct {
	baseStage
}

func newMergeStage() Stage {
	return &mergeStage{baseStage: baseStage{id: StageMergeAndLink, name: "MergeAndLink", critical: true}}
}

// citationMarkerPattern matches a bracketed citation number like "[3]".
// It intentionally does not match across newlines or capture anything
// already wrapped in an anchor — that exclusion is enforced procedurally
// in linkCitations, not by the regex, since Go's regexp cannot express
// "not inside an enclosing tag" as a lookaround.
var citationMarkerPattern = regexp.MustCompile(`\[(\d+)\]`)

func (s *mergeStage) Execute(ctx context.Context, ec *ExecutionContext) error {
	article := overlay(ec)
	linkCitations(article, ec.Parallel.CitationsList)
	sweepMarkers(article, ec.Parallel.CitationsList)
	flatten(article, ec)

	if err := validateArticle(article); err != nil {
		return err
	}

	ec.ValidatedArticle = article
	return nil
}

// overlay builds the ValidatedArticle skeleton from StructuredData plus
// whatever the fan-out stages produced; each field simply copies across,
// since ParallelOutputs and ValidatedArticle are shaped to match 1:1.
func overlay(ec *ExecutionContext) *ValidatedArticle {
	a := &ValidatedArticle{
		Headline:        ec.StructuredData.Headline,
		Teaser:          ec.StructuredData.Teaser,
		DirectAnswer:    ec.StructuredData.DirectAnswer,
		Intro:           ec.StructuredData.Intro,
		MetaTitle:       ec.StructuredData.MetaTitle,
		MetaDescription: ec.StructuredData.MetaDescription,
		KeyTakeaways:    ec.StructuredData.KeyTakeaways,
		Sections:        append([]ArticleSection(nil), ec.StructuredData.Sections...),
		Sources:         ec.Parallel.CitationsList,
		ToC:             ec.Parallel.ToC,
		InternalLinks:   ec.Parallel.InternalLinksList,
		FAQItems:        ec.Parallel.FAQItems,
		PAAItems:        ec.Parallel.PAAItems,
	}
	if title, ok := ec.Parallel.Metadata["meta_title"].(string); ok && title != "" {
		a.MetaTitle = title
	}
	if desc, ok := ec.Parallel.Metadata["meta_description"].(string); ok && desc != "" {
		a.MetaDescription = desc
	}
	if ec.Parallel.Image != nil {
		a.Images = append(a.Images, *ec.Parallel.Image)
	}
	a.Images = append(a.Images, ec.Parallel.ImageExtra...)
	return a
}

// linkCitations rewrites every "[N]" marker in each section's content into
// an anchor tag, using a procedural scan rather than a whole-document
// regex substitution so it can skip markers that already sit inside an
// existing <a>...</a> span (e.g. one the model echoed back verbatim).
func linkCitations(article *ValidatedArticle, citations []Citation) {
	if len(citations) == 0 {
		return
	}
	byN := make(map[int]Citation, len(citations))
	for _, c := range citations {
		byN[c.N] = c
	}
	for i := range article.Sections {
		article.Sections[i].Content = linkMarkersInText(article.Sections[i].Content, byN)
	}
	article.Intro = linkMarkersInText(article.Intro, byN)
}

func linkMarkersInText(text string, byN map[int]Citation) string {
	if text == "" {
		return text
	}
	var out strings.Builder
	depth := 0 // >0 while scanning inside an existing <a ...>...</a>
	pos := 0
	for pos < len(text) {
		lower := strings.ToLower(text[pos:])
		switch {
		case strings.HasPrefix(lower, "<a "), strings.HasPrefix(lower, "<a>"):
			depth++
			end := strings.Index(text[pos:], ">")
			if end < 0 {
				out.WriteString(text[pos:])
				pos = len(text)
				continue
			}
			out.WriteString(text[pos : pos+end+1])
			pos += end + 1
		case strings.HasPrefix(lower, "</a>"):
			if depth > 0 {
				depth--
			}
			out.WriteString(text[pos : pos+4])
			pos += 4
		default:
			loc := citationMarkerPattern.FindStringIndex(text[pos:])
			if loc == nil {
				out.WriteString(text[pos:])
				pos = len(text)
				continue
			}
			nextTagIdx := strings.Index(text[pos:], "<")
			if nextTagIdx >= 0 && nextTagIdx < loc[0] {
				out.WriteString(text[pos : pos+nextTagIdx])
				pos += nextTagIdx
				continue
			}
			out.WriteString(text[pos : pos+loc[0]])
			marker := text[pos+loc[0] : pos+loc[1]]
			if depth > 0 {
				out.WriteString(marker)
			} else {
				n, _ := strconv.Atoi(citationMarkerPattern.FindStringSubmatch(marker)[1])
				switch c, ok := byN[n]; {
				case ok && isValidCitationURL(c.URL):
					out.WriteString(`<a href="` + c.URL + `" target="_blank" rel="noopener noreferrer" data-cite-num="` + strconv.Itoa(n) + `">` + marker + `</a>`)
				case ok:
					// malformed citation URL: drop the anchor and the marker itself
				default:
					out.WriteString(marker)
				}
			}
			pos += loc[1]
		}
	}
	return out.String()
}

// isValidCitationURL enforces the scheme-is-http/https and authority-present
// check Stage 10 owns independently of whatever Stage 4's optional
// URLValidator collaborator may or may not have already screened out.
func isValidCitationURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// sweepMarkers removes any "[N]" marker left unresolved after
// linkCitations — either there were no citations at all, or N didn't match
// any of them. A dangling bracketed number in published copy reads as a
// bug, so it is stripped rather than shipped.
func sweepMarkers(article *ValidatedArticle, citations []Citation) {
	byN := make(map[int]bool, len(citations))
	for _, c := range citations {
		byN[c.N] = true
	}
	strip := func(text string) string {
		return citationMarkerPattern.ReplaceAllStringFunc(text, func(m string) string {
			n, _ := strconv.Atoi(citationMarkerPattern.FindStringSubmatch(m)[1])
			if byN[n] {
				return m // already linked by linkCitations; leave the visible "[N]" text
			}
			return ""
		})
	}
	for i := range article.Sections {
		article.Sections[i].Content = strip(article.Sections[i].Content)
	}
	article.Intro = strip(article.Intro)
}

// flatten derives any article-level fields that depend on the fully
// merged content (currently just key takeaways, when the draft didn't
// supply any, from the first sentence of each section).
func flatten(article *ValidatedArticle, ec *ExecutionContext) {
	if len(article.KeyTakeaways) > 0 {
		return
	}
	for _, sec := range article.Sections {
		if s := firstSentence(sec.Content); s != "" {
			article.KeyTakeaways = append(article.KeyTakeaways, s)
		}
	}
}

func validateArticle(article *ValidatedArticle) error {
	if strings.TrimSpace(article.Headline) == "" {
		return &ValidationFailure{Field: "headline", Message: "headline is empty"}
	}
	if len(article.Sections) == 0 {
		return &ValidationFailure{Field: "sections", Message: "article has no sections"}
	}
	for i, sec := range article.Sections {
		if strings.TrimSpace(sec.Content) == "" {
			return &ValidationFailure{Field: "sections", Message: "section " + strconv.Itoa(i) + " has empty content"}
		}
	}
	return nil
}
