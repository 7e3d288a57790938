// Package articlepipeline implements the stage-based workflow engine that
// turns one article request into a validated, linked, persisted article.
// The engine itself never calls an LLM, embedding model, or storage backend
// directly — every external dependency is a narrow interface in
// collaborators.go, satisfied by an adapter under internal/platform.
package articlepipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// StageID is a stable identifier for a pipeline stage. Values are never
// reused; renumbering a stage means retiring its id, not reassigning it.
type StageID int

const (
	StageDataFetch     StageID = 0
	StagePromptBuild    StageID = 1
	StageGenerate       StageID = 2
	StageExtract        StageID = 3
	StageRefine         StageID = 30 // "3b": conditional, runs between Extract and the fan-out
	StageCitations      StageID = 4
	StageInternalLinks  StageID = 5
	StageToC            StageID = 6
	StageMetadata       StageID = 7
	StageFAQ            StageID = 8
	StageImage          StageID = 9
	StageMergeAndLink   StageID = 10
	StagePersist        StageID = 11
	StageSimilarity     StageID = 12
)

func (id StageID) String() string {
	switch id {
	case StageDataFetch:
		return "DataFetch"
	case StagePromptBuild:
		return "PromptBuild"
	case StageGenerate:
		return "Generate"
	case StageExtract:
		return "Extract"
	case StageRefine:
		return "Refine"
	case StageCitations:
		return "Citations"
	case StageInternalLinks:
		return "InternalLinks"
	case StageToC:
		return "ToC"
	case StageMetadata:
		return "Metadata"
	case StageFAQ:
		return "FAQ"
	case StageImage:
		return "Image"
	case StageMergeAndLink:
		return "MergeAndLink"
	case StagePersist:
		return "Persist"
	case StageSimilarity:
		return "Similarity"
	default:
		return "Unknown"
	}
}

// JobConfig is the caller-supplied request, decoded verbatim from the job's
// payload at Stage 0.
type JobConfig struct {
	Keyword       string         `json:"keyword"`
	CompanyURL    string         `json:"company_url"`
	CompanyName   string         `json:"company_name,omitempty"`
	Language      string         `json:"language,omitempty"`
	Country       string         `json:"country,omitempty"`
	WordCount     int            `json:"word_count,omitempty"`
	Tone          string         `json:"tone,omitempty"`
	Options       map[string]any `json:"options,omitempty"`
	SystemPrompts []string       `json:"system_prompts,omitempty"`
	BatchID       string         `json:"batch_id,omitempty"`
}

// CompanyData is the site/company context fetched in Stage 0, used to ground
// prompts in Stage 1.
type CompanyData struct {
	Name        string   `json:"name,omitempty"`
	URL         string   `json:"url,omitempty"`
	Description string   `json:"description,omitempty"`
	SitemapURLs []string `json:"sitemap_urls,omitempty"`
}

// StructuredData is the LLM's extracted article content prior to the
// parallel enrichment fan-out. Stage 3b (Refine) may overwrite it wholesale.
type StructuredData struct {
	Headline          string            `json:"headline,omitempty"`
	Teaser             string            `json:"teaser,omitempty"`
	DirectAnswer       string            `json:"direct_answer,omitempty"`
	Intro              string            `json:"intro,omitempty"`
	MetaTitle          string            `json:"meta_title,omitempty"`
	MetaDescription    string            `json:"meta_description,omitempty"`
	Sections           []ArticleSection  `json:"sections,omitempty"`
	KeyTakeaways       []string          `json:"key_takeaways,omitempty"`
	PAAItems           []QAPair          `json:"paa_items,omitempty"`
	GroundingSources   []string          `json:"grounding_sources,omitempty"`
	Extra              map[string]any    `json:"extra,omitempty"`
}

type ArticleSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Citation struct {
	N     int    `json:"n"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type TocEntry struct {
	Anchor string `json:"anchor"`
	Label  string `json:"label"`
}

type InternalLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type ArticleImage struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text"`
}

// ParallelOutputs holds the typed result of each stage in the 4..9 fan-out.
// Fields are pointers/slices so a stage that failed advisorily simply leaves
// its field nil/empty rather than requiring a sentinel error value. Per
// spec, each field is written by exactly one stage, so no locking is needed
// once the fan-out is structured as "each goroutine owns its own field".
type ParallelOutputs struct {
	CitationsList     []Citation     `json:"citations_list,omitempty"`
	CitationsHTML     string         `json:"citations_html,omitempty"`
	InternalLinksList []InternalLink `json:"internal_links_list,omitempty"`
	ToC               []TocEntry     `json:"toc,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	FAQItems          []QAPair       `json:"faq_items,omitempty"`
	PAAItems          []QAPair       `json:"paa_items,omitempty"`
	Image             *ArticleImage  `json:"image,omitempty"`
	ImageExtra        []ArticleImage `json:"image_extra,omitempty"`
}

// ValidatedArticle is the flat, link-resolved document Stage 10 produces.
// Stage 11 (Persist) copies it by value before handing it to persistArticle.
type ValidatedArticle struct {
	Headline          string           `json:"headline"`
	Teaser             string           `json:"teaser"`
	DirectAnswer       string           `json:"direct_answer"`
	Intro              string           `json:"intro"`
	MetaTitle          string           `json:"meta_title"`
	MetaDescription    string           `json:"meta_description"`
	Sections           []ArticleSection `json:"sections"`
	KeyTakeaways       []string         `json:"key_takeaways,omitempty"`
	PAAItems           []QAPair         `json:"paa_items,omitempty"`
	FAQItems           []QAPair         `json:"faq_items,omitempty"`
	Images             []ArticleImage   `json:"images"`
	Sources            []Citation       `json:"sources,omitempty"`
	ToC                []TocEntry       `json:"toc,omitempty"`
	InternalLinks      []InternalLink   `json:"internal_links,omitempty"`
}

// QualityReport is the output of the non-blocking quality gate (§4.5). It is
// kept apart from ValidatedArticle; the gate finishes before Stage 11 starts,
// and Stage 11 writes it separately as quality_report.json.
type QualityReport struct {
	AEOScore            int      `json:"aeo_score"`
	CriticalIssues      []string `json:"critical_issues,omitempty"`
	RegenerationAttempt int      `json:"regeneration_attempt"`
}

// SimilarityReport is Stage 12's output.
type SimilarityReport struct {
	CharSim      float64    `json:"char_sim"`
	SemSim       *float64   `json:"sem_sim,omitempty"`
	Hybrid       float64    `json:"hybrid"`
	NearestJobID *uuid.UUID `json:"nearest_job_id,omitempty"`
}

// StorageResult is Stage 11's output: the persisted-file locations named in
// the per-job layout (article.json, article.html, citations.json, ...).
type StorageResult struct {
	Locations map[string]string `json:"locations"`
}

// ErrorKind classifies a StageError for the engine's failure taxonomy (§7).
type ErrorKind string

const (
	ErrorKindCritical   ErrorKind = "critical"
	ErrorKindAdvisory   ErrorKind = "advisory"
	ErrorKindValidation ErrorKind = "validation"
)

// StageError is an append-only record of a failure observed during
// execution, regardless of whether it terminated the job.
type StageError struct {
	Kind      ErrorKind `json:"kind"`
	StageID   StageID   `json:"stage_id"`
	StageName string    `json:"stage_name"`
	Message   string    `json:"message"`
	Attempt   int       `json:"attempt"`
	Timestamp time.Time `json:"timestamp"`
}

// ProgressFunc is invoked once after each stage settles (success or
// failure), always with done set to true. The engine makes no call before a
// stage starts.
type ProgressFunc func(stage StageID, percent int, done bool, errTag string)

// ExecutionContext is the per-job mutable working memory the engine threads
// through every stage. It is single-writer except during the stages 4..9
// fan-out, where each goroutine owns a disjoint field of ParallelOutputs —
// no field is written by more than one stage, so no lock guards those
// writes. The mutex here only protects the append-only errors slice, which
// the fan-out's goroutines append to concurrently.
type ExecutionContext struct {
	JobID   uuid.UUID
	BatchID string

	Config      JobConfig
	CompanyData CompanyData
	Language    string

	Prompt string

	RawArticle       string
	GroundingSources []string

	StructuredData      StructuredData
	RefinementApplied   bool

	Parallel ParallelOutputs

	ValidatedArticle *ValidatedArticle
	QualityReport    *QualityReport
	SimilarityReport *SimilarityReport
	StorageResult    *StorageResult

	RegenerationAttempt int
	RegenerationNeeded  bool

	ProgressCB ProgressFunc

	mu     sync.Mutex
	errors []StageError
}

// NewExecutionContext creates a fresh per-job working record. progressCB may
// be nil, in which case progress reporting is a no-op.
func NewExecutionContext(jobID uuid.UUID, cfg JobConfig, progressCB ProgressFunc) *ExecutionContext {
	return &ExecutionContext{
		JobID:      jobID,
		BatchID:    cfg.BatchID,
		Config:     cfg,
		ProgressCB: progressCB,
	}
}

// AddError appends a StageError. Safe to call concurrently from the
// parallel fan-out.
func (ec *ExecutionContext) AddError(e StageError) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	e.Timestamp = time.Now()
	ec.errors = append(ec.errors, e)
}

// Errors returns a snapshot copy of the accumulated errors.
func (ec *ExecutionContext) Errors() []StageError {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	out := make([]StageError, len(ec.errors))
	copy(out, ec.errors)
	return out
}

// HasCriticalError reports whether any recorded error is critical- or
// validation-kind.
func (ec *ExecutionContext) HasCriticalError() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	for _, e := range ec.errors {
		if e.Kind == ErrorKindCritical || e.Kind == ErrorKindValidation {
			return true
		}
	}
	return false
}

// reportProgress is a nil-safe wrapper around ProgressCB.
func (ec *ExecutionContext) reportProgress(stage StageID, percent int, done bool, errTag string) {
	if ec.ProgressCB == nil {
		return
	}
	ec.ProgressCB(stage, percent, done, errTag)
}
