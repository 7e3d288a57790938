package batch

import "github.com/yungbote/articlegen-backend/internal/pkg/logger"

// Services bundles the cross-job state one orchestrator process keeps for
// the lifetime of a batch run. It is constructed once at startup and
// shared across every job the worker pool executes; similarity comparisons
// themselves stay batch-scoped via Registry (see registry.go), never across
// unrelated batches.
type Services struct {
	Registry *MemoryRegistry
	Quality  *QualityMonitor
	Checker  *SimilarityChecker
}

// NewServices wires a MemoryRegistry into the SimilarityChecker (which
// resolves one Memory per batch from the registry) and builds a
// QualityMonitor that does not use the registry (it is batch-agnostic — it
// tracks a quality trend, not article content). capacity <= 0 falls back to
// DefaultCapacity per batch.
func NewServices(capacity int, log *logger.Logger) *Services {
	reg := NewMemoryRegistry(capacity)
	return &Services{
		Registry: reg,
		Quality:  NewQualityMonitor(log),
		Checker:  NewSimilarityChecker(reg, log),
	}
}
