package batch

import "testing"

func TestNewServicesWiresRegistryAndChecker(t *testing.T) {
	svc := NewServices(5, nil)
	if svc.Checker.registry != svc.Registry {
		t.Fatalf("expected Checker to resolve Memory from the same registry as Services")
	}
	if svc.Quality == nil || svc.Checker == nil || svc.Registry == nil {
		t.Fatalf("expected Quality, Checker, and Registry to all be wired, got %+v", svc)
	}
}

func TestNewServicesQualityMonitorIsBatchAgnostic(t *testing.T) {
	svc := NewServices(5, nil)
	memA := svc.Registry.Get("batch-a")
	memB := svc.Registry.Get("batch-b")
	if memA == memB {
		t.Fatalf("expected distinct batches to resolve distinct Memory instances")
	}
	// QualityMonitor tracks a process-wide trailing quality trend, not
	// per-batch state, so it is shared regardless of which batch a job
	// belongs to.
	if svc.Quality == nil {
		t.Fatalf("expected a single shared QualityMonitor")
	}
}
