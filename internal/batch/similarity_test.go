package batch

import (
	"context"
	"testing"
)

func TestSimilarityCheckerFirstEntryHasNoMatch(t *testing.T) {
	c := NewSimilarityChecker(NewMemoryRegistry(10), nil)
	result, err := c.Check(context.Background(), "job-1", "batch-a", "kw", "some article body about widgets", nil)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if result.Hybrid != 0 || result.Warning {
		t.Fatalf("expected no match against empty memory, got %+v", result)
	}
}

func TestSimilarityCheckerFlagsNearDuplicateWithinSameBatch(t *testing.T) {
	c := NewSimilarityChecker(NewMemoryRegistry(10), nil)
	body := "the quick brown fox jumps over the lazy dog repeatedly across the field at dawn"

	if _, err := c.Check(context.Background(), "job-1", "batch-a", "kw", body, nil); err != nil {
		t.Fatalf("Check #1: %v", err)
	}

	result, err := c.Check(context.Background(), "job-2", "batch-a", "kw", body, nil)
	if err != nil {
		t.Fatalf("Check #2: %v", err)
	}
	if !result.Warning {
		t.Fatalf("expected warning for identical body, got %+v", result)
	}
	if result.NearestJobID != "job-1" {
		t.Fatalf("expected nearest job job-1, got %q", result.NearestJobID)
	}
}

func TestSimilarityCheckerIgnoresOtherBatches(t *testing.T) {
	c := NewSimilarityChecker(NewMemoryRegistry(10), nil)
	body := "the quick brown fox jumps over the lazy dog repeatedly across the field at dawn"

	if _, err := c.Check(context.Background(), "job-1", "batch-a", "kw", body, nil); err != nil {
		t.Fatalf("Check #1: %v", err)
	}

	result, err := c.Check(context.Background(), "job-2", "batch-b", "kw", body, nil)
	if err != nil {
		t.Fatalf("Check #2: %v", err)
	}
	if result.Warning {
		t.Fatalf("expected no warning across unrelated batches, got %+v", result)
	}
}

func TestSimilarityCheckerEmptyBatchIDScopesToJobID(t *testing.T) {
	c := NewSimilarityChecker(NewMemoryRegistry(10), nil)
	body := "an unrelated body about gadgets and widgets for testing singleton batch scope"

	if _, err := c.Check(context.Background(), "job-1", "", "kw", body, nil); err != nil {
		t.Fatalf("Check #1: %v", err)
	}
	// A second job with no batch_id must not see job-1's entry, since each
	// batch_id-less job gets its own singleton batch keyed by job_id.
	result, err := c.Check(context.Background(), "job-2", "", "kw", body, nil)
	if err != nil {
		t.Fatalf("Check #2: %v", err)
	}
	if result.Warning {
		t.Fatalf("expected no warning between two batch_id-less jobs, got %+v", result)
	}
}

func TestSimilarityCheckerAppendsAfterScoring(t *testing.T) {
	registry := NewMemoryRegistry(10)
	c := NewSimilarityChecker(registry, nil)
	body := "an article body long enough to produce shingles for comparison purposes"

	if _, err := c.Check(context.Background(), "job-1", "batch-a", "kw", body, nil); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got := registry.Get("batch-a").Len(); got != 1 {
		t.Fatalf("expected batch-a memory to grow to 1 entry after Check, got %d", got)
	}
}

func TestJaccardEmptySets(t *testing.T) {
	if got := jaccard(nil, nil); got != 0 {
		t.Fatalf("jaccard(nil, nil): expected 0, got %v", got)
	}
}

func TestCosineSimilarityIdentical(t *testing.T) {
	v := []float64{1, 2, 3}
	if got := cosineSimilarity(v, v); got < 0.999 || got > 1.001 {
		t.Fatalf("cosineSimilarity(v, v): expected ~1, got %v", got)
	}
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	if got := cosineSimilarity([]float64{0, 0}, []float64{1, 2}); got != 0 {
		t.Fatalf("cosineSimilarity with zero vector: expected 0, got %v", got)
	}
}
