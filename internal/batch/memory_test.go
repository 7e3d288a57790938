package batch

import "testing"

func TestMemoryAddRespectsCapacity(t *testing.T) {
	m := NewMemory(2)
	m.Add("job-1", "kw-1", nil, nil)
	m.Add("job-2", "kw-2", nil, nil)
	m.Add("job-3", "kw-3", nil, nil)

	if got := m.Len(); got != 2 {
		t.Fatalf("Len: expected 2, got %d", got)
	}
	snap := m.Snapshot()
	if snap[0].JobID != "job-2" || snap[1].JobID != "job-3" {
		t.Fatalf("expected oldest entry evicted, got %+v", snap)
	}
}

func TestMemoryDefaultCapacity(t *testing.T) {
	m := NewMemory(0)
	if m.capacity != DefaultCapacity {
		t.Fatalf("expected default capacity %d, got %d", DefaultCapacity, m.capacity)
	}
}

func TestMemorySnapshotIsACopy(t *testing.T) {
	m := NewMemory(10)
	m.Add("job-1", "kw-1", nil, nil)
	snap := m.Snapshot()
	snap[0].JobID = "mutated"

	if got := m.Snapshot()[0].JobID; got != "job-1" {
		t.Fatalf("Snapshot should return a copy, underlying entry changed to %q", got)
	}
}
