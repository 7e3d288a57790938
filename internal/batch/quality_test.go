package batch

import "testing"

func TestQualityMonitorRecordFiresCriticalAlert(t *testing.T) {
	m := NewQualityMonitor(nil)
	alerts := m.Record("job-1", 42, 0)
	if len(alerts) != 1 || alerts[0].Severity != "critical" {
		t.Fatalf("expected one critical alert, got %+v", alerts)
	}
}

func TestQualityMonitorRecordFiresWarningForLowScore(t *testing.T) {
	m := NewQualityMonitor(nil)
	alerts := m.Record("job-1", 65, 0)
	if len(alerts) != 1 || alerts[0].Severity != "warning" {
		t.Fatalf("expected one warning alert, got %+v", alerts)
	}
}

func TestQualityMonitorRecordNoAlertAboveThresholds(t *testing.T) {
	m := NewQualityMonitor(nil)
	alerts := m.Record("job-1", 90, 1)
	if len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", alerts)
	}
}

func TestQualityMonitorRecordFiresOnHighCriticalIssueCount(t *testing.T) {
	m := NewQualityMonitor(nil)
	alerts := m.Record("job-1", 90, 4)
	if len(alerts) != 1 || alerts[0].Severity != "warning" {
		t.Fatalf("expected one warning alert for critical issue count, got %+v", alerts)
	}
}

func TestQualityMonitorWindowEvictsOldestRecord(t *testing.T) {
	m := NewQualityMonitor(nil)
	for i := 0; i < WindowSize+10; i++ {
		m.Record("job", 90, 0)
	}
	if got := len(m.records); got != WindowSize {
		t.Fatalf("expected window capped at %d, got %d", WindowSize, got)
	}
}

func TestQualityMonitorTrailingRegressionNeedsTwentyRecords(t *testing.T) {
	m := NewQualityMonitor(nil)
	for i := 0; i < 10; i++ {
		m.Record("job", 90, 0)
	}
	for i := 0; i < 9; i++ {
		m.Record("job", 70, 0)
	}
	// only 19 records so far: regression rule must not have fired yet.
	stats := m.Statistics()
	if stats.RecentAlertCount != 0 {
		t.Fatalf("expected no alerts before the 20th record (70 is not below the warning threshold), got %d", stats.RecentAlertCount)
	}

	// the 20th record completes two full 10-record halves with a 20+ point drop.
	alerts := m.Record("job", 70, 0)
	found := false
	for _, a := range alerts {
		if a.Message == "mean AEO score regressed 10+ points over trailing window" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected trailing regression alert once 20 records accumulated, got %+v", alerts)
	}
}

func TestQualityMonitorStatisticsEmptyWindow(t *testing.T) {
	m := NewQualityMonitor(nil)
	stats := m.Statistics()
	if stats != (Statistics{}) {
		t.Fatalf("expected zero-value statistics for empty window, got %+v", stats)
	}
}

func TestQualityMonitorStatisticsComputesRates(t *testing.T) {
	m := NewQualityMonitor(nil)
	m.Record("job-1", 40, 0) // critical + low
	m.Record("job-2", 60, 0) // low only
	m.Record("job-3", 90, 0) // neither

	stats := m.Statistics()
	if stats.LowQualityRate < 0.66 || stats.LowQualityRate > 0.67 {
		t.Fatalf("expected LowQualityRate ~0.667, got %v", stats.LowQualityRate)
	}
	if stats.CriticalRate < 0.33 || stats.CriticalRate > 0.34 {
		t.Fatalf("expected CriticalRate ~0.333, got %v", stats.CriticalRate)
	}
}
