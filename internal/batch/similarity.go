package batch

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/yungbote/articlegen-backend/internal/articlepipeline"
	"github.com/yungbote/articlegen-backend/internal/observability"
	"github.com/yungbote/articlegen-backend/internal/pkg/logger"
)

// ShingleSize is the character-shingle width used for the Jaccard
// similarity half of the hybrid score.
const ShingleSize = 9

// CharWeight/SemWeight are the hybrid blend weights: hybrid = 0.4*char +
// 0.6*sem when an embedding similarity is available, or char alone
// otherwise.
const (
	CharWeight = 0.4
	SemWeight  = 0.6

	// WarningThreshold is the hybrid score at or above which a near-duplicate
	// warning fires.
	WarningThreshold = 0.70
)

var whitespaceCollapse = regexp.MustCompile(`\s+`)

// SimilarityChecker implements articlepipeline.SimilarityChecker: it
// compares a new article's body against everything currently in its
// batch's Memory, appends the new article once scored, and reports the
// nearest match. The batch's Memory is resolved fresh from the registry on
// every call, so comparisons never leak across batch boundaries.
type SimilarityChecker struct {
	registry *MemoryRegistry
	log      *logger.Logger
}

// NewSimilarityChecker wires a checker to the given batch-memory registry.
func NewSimilarityChecker(registry *MemoryRegistry, log *logger.Logger) *SimilarityChecker {
	return &SimilarityChecker{registry: registry, log: log}
}

var _ articlepipeline.SimilarityChecker = (*SimilarityChecker)(nil)

// Check normalizes body, shingles it, optionally embeds it, scores it
// against every entry currently in the submitting job's batch memory,
// records the result, and only then appends the new entry — so a job never
// compares against itself. batchID selects which batch's Memory is used; a
// job submitted without one is scoped to a singleton batch keyed by its own
// jobID, per spec.
func (c *SimilarityChecker) Check(ctx context.Context, jobID, batchID, keyword, body string, embed articlepipeline.EmbeddingClient) (articlepipeline.SimilarityResult, error) {
	memKey := batchID
	if memKey == "" {
		memKey = jobID
	}
	memory := c.registry.Get(memKey)

	normalized := normalizeForShingling(body)
	fingerprint := shingleSet(normalized, ShingleSize)

	var embedding []float64
	var embedErr error
	if embed != nil {
		embedding, embedErr = embed.Embed(ctx, normalized)
	}

	var best articlepipeline.SimilarityResult
	var bestJobID string
	for _, entry := range memory.Snapshot() {
		charSim := jaccard(fingerprint, entry.ShingleFingerprint)
		hybrid := charSim
		var semPtr *float64
		if embedErr == nil && len(embedding) > 0 && len(entry.Embedding) > 0 {
			sem := cosineSimilarity(embedding, entry.Embedding)
			semPtr = &sem
			hybrid = CharWeight*charSim + SemWeight*sem
		}
		if hybrid > best.Hybrid {
			best = articlepipeline.SimilarityResult{CharSim: charSim, SemSim: semPtr, Hybrid: hybrid}
			bestJobID = entry.JobID
		}
	}
	if bestJobID != "" {
		best.NearestJobID = bestJobID
	}
	best.Warning = best.Hybrid >= WarningThreshold

	memory.Add(jobID, keyword, fingerprint, embedding)

	if best.Warning {
		observability.ReportStructuralDrift(ctx, c.log, []observability.StructuralDriftAlertMetric{{
			Name:      "article_similarity_hybrid",
			Status:    "warning",
			Value:     best.Hybrid,
			Threshold: WarningThreshold,
			Meta: map[string]any{
				"job_id":         jobID,
				"keyword":        keyword,
				"nearest_job_id": bestJobID,
			},
		}}, nil)
	}

	var err error
	if embedErr != nil {
		err = nil // the embedding error is not returned; the result is char-sim only
	}
	return best, err
}

func normalizeForShingling(s string) string {
	s = strings.ToLower(s)
	s = whitespaceCollapse.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func shingleSet(s string, k int) map[string]struct{} {
	set := map[string]struct{}{}
	if len(s) < k {
		if s != "" {
			set[s] = struct{}{}
		}
		return set
	}
	for i := 0; i+k <= len(s); i++ {
		set[s[i:i+k]] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
