package batch

import (
	"sync"
	"time"
)

// batchIdleTTL bounds how long a batch's Memory stays resident once nothing
// has touched it. The job queue has no explicit "batch end" event, so an
// idle batch is pruned lazily on the next Get call instead of being
// evicted synchronously when its last job finishes.
const batchIdleTTL = 6 * time.Hour

type batchEntry struct {
	memory     *Memory
	lastAccess time.Time
}

// MemoryRegistry hands out one Memory ring buffer per batch, so a job's
// near-duplicate comparison (internal/batch/similarity.go) only ever scores
// against other jobs submitted in the same batch. A job submitted without a
// batch_id is keyed by its own job_id instead, which gives it a singleton
// batch scoped to just itself per spec — the checker trivially finds no
// prior entries and still records its own fingerprint.
type MemoryRegistry struct {
	mu       sync.Mutex
	capacity int
	batches  map[string]*batchEntry
}

// NewMemoryRegistry builds a registry whose per-batch Memory ring buffers
// all share the given capacity (<= 0 falls back to DefaultCapacity).
func NewMemoryRegistry(capacity int) *MemoryRegistry {
	return &MemoryRegistry{capacity: capacity, batches: make(map[string]*batchEntry)}
}

// Get returns the Memory scoped to key, creating it on first access. Any
// other batch idle past batchIdleTTL is pruned at the same time.
func (r *MemoryRegistry) Get(key string) *Memory {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for k, e := range r.batches {
		if k != key && now.Sub(e.lastAccess) > batchIdleTTL {
			delete(r.batches, k)
		}
	}

	e, ok := r.batches[key]
	if !ok {
		e = &batchEntry{memory: NewMemory(r.capacity)}
		r.batches[key] = e
	}
	e.lastAccess = now
	return e.memory
}

// BatchCount reports how many batches are currently resident, for tests and
// health checks.
func (r *MemoryRegistry) BatchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}
