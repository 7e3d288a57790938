package articlepipeline

import (
	"context"
	"time"
)

// LLMClient is the narrow surface the pipeline needs from a text-generation
// backend. schema, when non-nil, asks the backend for structured JSON
// output conforming to it (a json-schema-shaped map); when nil the backend
// returns freeform text.
type LLMClient interface {
	Generate(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

type LLMRequest struct {
	SystemInstruction string
	Prompt            string
	ResponseSchema    map[string]any
	Temperature       float64
}

type LLMResponse struct {
	Text string
	// JSON is populated instead of Text when ResponseSchema was set.
	JSON map[string]any
}

// EmbeddingClient produces a dense vector for similarity comparisons.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// URLValidator confirms a URL resolves without fetching its body.
type URLValidator interface {
	Head(ctx context.Context, url string, timeout time.Duration) (statusCode int, finalURL string, err error)
}

// LinkCandidate is one internal-link suggestion surfaced by a LinkProvider.
type LinkCandidate struct {
	Title         string
	URL           string
	AnchorPhrases []string
}

// LinkProvider surfaces internal-link candidates for a given keyword/topic,
// typically backed by a sitemap crawl of the target company's site.
type LinkProvider interface {
	Candidates(ctx context.Context, companyURL string, keyword string) ([]LinkCandidate, error)
}

// ImageBackend generates a hero image for the article.
type ImageBackend interface {
	Generate(ctx context.Context, prompt string) (url string, alt string, err error)
}

// Storage persists one named artifact under a job's output prefix and
// returns its durable location.
type Storage interface {
	Put(ctx context.Context, jobID string, key string, data []byte, contentType string) (location string, err error)
}

// Renderer converts the validated article body into the final HTML export.
type Renderer interface {
	RenderHTML(article *ValidatedArticle) (string, error)
}

// AEOScorer is the external, policy-owning quality scorer the quality gate
// (§4.5) delegates to. It is deliberately opaque to the engine: the engine
// only consumes the returned score and issue list.
type AEOScorer interface {
	Score(ctx context.Context, article *ValidatedArticle) (score int, criticalIssues []string, err error)
}

// Collaborators bundles every external dependency the engine needs to run a
// job. A nil field is accepted: the factory does not check collaborators,
// and a stage whose collaborator is nil fails or skips that part of its work
// when it runs (see factory.go).
type Collaborators struct {
	LLM          LLMClient
	Embeddings   EmbeddingClient
	URLValidator URLValidator
	LinkProvider LinkProvider
	ImageBackend ImageBackend
	Storage      Storage
	Renderer     Renderer
	Scorer       AEOScorer
	Quality      QualityRecorder
	Similarity   SimilarityChecker
}
