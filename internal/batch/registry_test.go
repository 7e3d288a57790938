package batch

import "testing"

func TestMemoryRegistryGetReturnsDistinctMemoryPerKey(t *testing.T) {
	r := NewMemoryRegistry(10)
	a := r.Get("batch-a")
	b := r.Get("batch-b")
	if a == b {
		t.Fatalf("expected different batch keys to resolve different Memory instances")
	}
}

func TestMemoryRegistryGetIsStableForSameKey(t *testing.T) {
	r := NewMemoryRegistry(10)
	first := r.Get("batch-a")
	first.Add("job-1", "kw", map[string]struct{}{"abc": {}}, nil)

	second := r.Get("batch-a")
	if second != first {
		t.Fatalf("expected repeat Get for the same key to return the same Memory instance")
	}
	if got := second.Len(); got != 1 {
		t.Fatalf("expected the earlier Add to be visible, got %d entries", got)
	}
}

func TestMemoryRegistryBatchCount(t *testing.T) {
	r := NewMemoryRegistry(10)
	if got := r.BatchCount(); got != 0 {
		t.Fatalf("expected a fresh registry to have 0 batches, got %d", got)
	}
	r.Get("batch-a")
	r.Get("batch-b")
	r.Get("batch-a")
	if got := r.BatchCount(); got != 2 {
		t.Fatalf("expected 2 distinct batches resident, got %d", got)
	}
}
