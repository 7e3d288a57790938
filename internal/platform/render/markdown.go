// Package render converts a validated article into its HTML export using
// goldmark, the same markdown engine the rest of this codebase's content
// pipeline reaches for.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/yungbote/articlegen-backend/internal/articlepipeline"
)

// HTMLRenderer satisfies articlepipeline.Renderer.
type HTMLRenderer struct {
	md goldmark.Markdown
}

var _ articlepipeline.Renderer = (*HTMLRenderer)(nil)

// NewHTMLRenderer builds a renderer with GFM extensions enabled (tables,
// strikethrough, autolinks) since the teacher's own markdown surfaces use
// the same extension set.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// RenderHTML renders each section's markdown body to HTML and assembles a
// single document in article order: headline, intro, ToC, sections, FAQ.
// Sources are not rendered.
func (r *HTMLRenderer) RenderHTML(article *articlepipeline.ValidatedArticle) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "<article>\n<h1>%s</h1>\n", html.EscapeString(article.Headline))
	if article.Intro != "" {
		intro, err := r.toHTML(article.Intro)
		if err != nil {
			return "", fmt.Errorf("render intro: %w", err)
		}
		b.WriteString(intro)
	}

	if len(article.ToC) > 0 {
		b.WriteString("<nav class=\"toc\"><ul>\n")
		for _, e := range article.ToC {
			fmt.Fprintf(&b, "<li><a href=\"#%s\">%s</a></li>\n", e.Anchor, html.EscapeString(e.Label))
		}
		b.WriteString("</ul></nav>\n")
	}

	for i, sec := range article.Sections {
		anchor := ""
		if i < len(article.ToC) {
			anchor = article.ToC[i].Anchor
		}
		fmt.Fprintf(&b, "<section id=\"%s\">\n<h2>%s</h2>\n", anchor, html.EscapeString(sec.Title))
		body, err := r.toHTML(sec.Content)
		if err != nil {
			return "", fmt.Errorf("render section %q: %w", sec.Title, err)
		}
		b.WriteString(body)
		b.WriteString("</section>\n")
	}

	if len(article.FAQItems) > 0 {
		b.WriteString("<section class=\"faq\">\n<h2>Frequently Asked Questions</h2>\n")
		for _, qa := range article.FAQItems {
			fmt.Fprintf(&b, "<div class=\"faq-item\"><h3>%s</h3><p>%s</p></div>\n", html.EscapeString(qa.Question), html.EscapeString(qa.Answer))
		}
		b.WriteString("</section>\n")
	}

	b.WriteString("</article>\n")
	return b.String(), nil
}

func (r *HTMLRenderer) toHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
