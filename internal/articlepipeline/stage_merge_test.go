package articlepipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestLinkMarkersInTextLinksKnownCitation(t *testing.T) {
	byN := map[int]Citation{1: {N: 1, Title: "Source", URL: "https://example.com/a"}}
	out := linkMarkersInText("see [1] for details", byN)
	if !strings.Contains(out, `<a href="https://example.com/a"`) {
		t.Fatalf("expected anchor for [1], got %q", out)
	}
	if !strings.Contains(out, `data-cite-num="1"`) {
		t.Fatalf("expected data-cite-num attribute, got %q", out)
	}
}

func TestLinkMarkersInTextDropsMalformedURL(t *testing.T) {
	byN := map[int]Citation{1: {N: 1, Title: "Bad", URL: "not-a-url"}}
	out := linkMarkersInText("see [1] for details", byN)
	if strings.Contains(out, "<a ") {
		t.Fatalf("expected no anchor for a malformed URL, got %q", out)
	}
	if strings.Contains(out, "[1]") {
		t.Fatalf("expected marker for malformed URL to be dropped entirely, got %q", out)
	}
}

func TestLinkMarkersInTextRejectsNonHTTPScheme(t *testing.T) {
	byN := map[int]Citation{1: {N: 1, Title: "Bad", URL: "javascript:alert(1)"}}
	out := linkMarkersInText("see [1]", byN)
	if strings.Contains(out, "<a ") || strings.Contains(out, "[1]") {
		t.Fatalf("expected javascript: scheme to be rejected and marker dropped, got %q", out)
	}
}

func TestLinkMarkersInTextLeavesUnresolvedMarkerForSweep(t *testing.T) {
	out := linkMarkersInText("orphan [9] marker", map[int]Citation{})
	if !strings.Contains(out, "[9]") {
		t.Fatalf("expected unresolved marker to pass through for sweepMarkers, got %q", out)
	}
}

func TestLinkMarkersInTextSkipsMarkerInsideExistingAnchor(t *testing.T) {
	byN := map[int]Citation{1: {N: 1, Title: "Source", URL: "https://example.com/a"}}
	in := `<a href="https://other.example/b">[1]</a>`
	out := linkMarkersInText(in, byN)
	if strings.Count(out, "<a ") != 1 {
		t.Fatalf("expected the existing anchor to be left alone, not double-wrapped, got %q", out)
	}
	if !strings.Contains(out, "https://other.example/b") {
		t.Fatalf("expected original href preserved, got %q", out)
	}
}

func TestIsValidCitationURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://example.com/a", true},
		{"http://example.com", true},
		{"ftp://example.com", false},
		{"javascript:alert(1)", false},
		{"not a url at all", false},
		{"https://", false},
		{"", false},
	}
	for _, c := range cases {
		if got := isValidCitationURL(c.url); got != c.want {
			t.Errorf("isValidCitationURL(%q) = %v, want %v", c.url, got, c.want)
		}
	}
}

func TestSweepMarkersStripsOrphanMarker(t *testing.T) {
	article := &ValidatedArticle{
		Intro: "intro references [9] nothing",
		Sections: []ArticleSection{
			{Title: "s1", Content: "body has [1] and orphan [9]"},
		},
	}
	sweepMarkers(article, []Citation{{N: 1, URL: "https://example.com/a"}})

	if strings.Contains(article.Intro, "[9]") {
		t.Fatalf("expected orphan [9] stripped from intro, got %q", article.Intro)
	}
	if strings.Contains(article.Sections[0].Content, "[9]") {
		t.Fatalf("expected orphan [9] stripped from section, got %q", article.Sections[0].Content)
	}
	if !strings.Contains(article.Sections[0].Content, "[1]") {
		t.Fatalf("expected already-linked [1] marker text to survive the sweep, got %q", article.Sections[0].Content)
	}
}

func TestValidateArticleRejectsEmptyHeadline(t *testing.T) {
	article := &ValidatedArticle{Sections: []ArticleSection{{Title: "s", Content: "c"}}}
	err := validateArticle(article)
	if err == nil {
		t.Fatalf("expected validation failure for empty headline")
	}
	if _, ok := err.(*ValidationFailure); !ok {
		t.Fatalf("expected *ValidationFailure, got %T", err)
	}
}

func TestValidateArticleRejectsNoSections(t *testing.T) {
	article := &ValidatedArticle{Headline: "h"}
	if err := validateArticle(article); err == nil {
		t.Fatalf("expected validation failure for zero sections")
	}
}

func TestValidateArticleRejectsEmptySectionContent(t *testing.T) {
	article := &ValidatedArticle{Headline: "h", Sections: []ArticleSection{{Title: "s", Content: "  "}}}
	if err := validateArticle(article); err == nil {
		t.Fatalf("expected validation failure for blank section content")
	}
}

func TestValidateArticleAcceptsWellFormedArticle(t *testing.T) {
	article := &ValidatedArticle{Headline: "h", Sections: []ArticleSection{{Title: "s", Content: "c"}}}
	if err := validateArticle(article); err != nil {
		t.Fatalf("expected no validation failure, got %v", err)
	}
}

// TestMergeStageExecuteLinksCitationsAndStripsOrphanMarker runs the real
// mergeStage.Execute end to end: overlay, LinkCitations, SweepMarkers,
// Flatten, Validate, against a populated ExecutionContext rather than a
// fake stage substitute.
func TestMergeStageExecuteLinksCitationsAndStripsOrphanMarker(t *testing.T) {
	ec := NewExecutionContext(uuid.New(), JobConfig{Keyword: "widgets"}, nil)
	ec.StructuredData = StructuredData{
		Headline: "All About Widgets",
		Intro:    "Widgets are great [1].",
		Sections: []ArticleSection{
			{Title: "History", Content: "Widgets date back [2] to antiquity, see also [9]."},
		},
	}
	ec.Parallel.CitationsList = []Citation{
		{N: 1, Title: "Widget Origins", URL: "https://example.com/origins"},
		{N: 2, Title: "Ancient Widgets", URL: "not-a-valid-url"},
	}

	stage := newMergeStage()
	if err := stage.Execute(context.Background(), ec); err != nil {
		t.Fatalf("unexpected error from mergeStage.Execute: %v", err)
	}
	if ec.ValidatedArticle == nil {
		t.Fatalf("expected ValidatedArticle to be set")
	}

	article := ec.ValidatedArticle
	if !strings.Contains(article.Intro, `<a href="https://example.com/origins"`) {
		t.Fatalf("expected [1] linked in intro, got %q", article.Intro)
	}

	sectionBody := article.Sections[0].Content
	if strings.Contains(sectionBody, "<a ") {
		t.Fatalf("expected citation 2's malformed URL to produce no anchor, got %q", sectionBody)
	}
	if strings.Contains(sectionBody, "[2]") {
		t.Fatalf("expected citation 2's marker dropped for a malformed URL, got %q", sectionBody)
	}
	if strings.Contains(sectionBody, "[9]") {
		t.Fatalf("expected orphan [9] marker stripped, got %q", sectionBody)
	}
}

func TestMergeStageExecuteRejectsMissingHeadline(t *testing.T) {
	ec := NewExecutionContext(uuid.New(), JobConfig{}, nil)
	ec.StructuredData = StructuredData{
		Sections: []ArticleSection{{Title: "s", Content: "c"}},
	}

	stage := newMergeStage()
	err := stage.Execute(context.Background(), ec)
	if err == nil {
		t.Fatalf("expected a validation failure for a missing headline")
	}
	if _, ok := err.(*ValidationFailure); !ok {
		t.Fatalf("expected *ValidationFailure, got %T", err)
	}
	if ec.ValidatedArticle != nil {
		t.Fatalf("expected ValidatedArticle to remain unset on validation failure")
	}
}
