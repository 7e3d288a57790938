package batch

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/articlegen-backend/internal/articlepipeline"
	"github.com/yungbote/articlegen-backend/internal/observability"
	"github.com/yungbote/articlegen-backend/internal/pkg/logger"
)

// QualityRecord is one job's quality-gate outcome, kept only as long as it
// fits in the trailing window.
type QualityRecord struct {
	JobID              string
	AEOScore           int
	CriticalIssueCount int
	Timestamp          time.Time
}

// WindowSize is the fixed trailing-window length the monitor's alert rules
// are computed over.
const WindowSize = 100

// QualityMonitor tracks a trailing window of quality-gate outcomes across a
// batch run and raises non-blocking alerts when it observes a low score, a
// high critical-issue count, or a sustained regression. It never affects
// job outcome — Record is purely an observability sink.
type QualityMonitor struct {
	mu      sync.Mutex
	records []QualityRecord
	log     *logger.Logger
}

// NewQualityMonitor builds an empty monitor.
func NewQualityMonitor(log *logger.Logger) *QualityMonitor {
	return &QualityMonitor{log: log}
}

var _ articlepipeline.QualityRecorder = (*QualityMonitor)(nil)

// Record appends one outcome, evaluates the alert rules against the
// updated window, and delivers any that fire. It returns the alerts so a
// caller can also surface them inline (e.g. attach to the job's record)
// without re-deriving them.
func (m *QualityMonitor) Record(jobID string, aeoScore int, criticalIssueCount int) []articlepipeline.QualityAlert {
	m.mu.Lock()
	if len(m.records) >= WindowSize {
		m.records = m.records[1:]
	}
	rec := QualityRecord{JobID: jobID, AEOScore: aeoScore, CriticalIssueCount: criticalIssueCount, Timestamp: time.Now()}
	m.records = append(m.records, rec)
	snapshot := append([]QualityRecord(nil), m.records...)
	m.mu.Unlock()

	alerts := evaluateAlertRules(rec, snapshot)
	if len(alerts) > 0 {
		m.deliver(jobID, alerts)
	}
	return alerts
}

func evaluateAlertRules(rec QualityRecord, window []QualityRecord) []articlepipeline.QualityAlert {
	var alerts []articlepipeline.QualityAlert

	switch {
	case rec.AEOScore < 50:
		alerts = append(alerts, articlepipeline.QualityAlert{Severity: "critical", Message: "AEO score below 50"})
	case rec.AEOScore < 70:
		alerts = append(alerts, articlepipeline.QualityAlert{Severity: "warning", Message: "AEO score below 70"})
	}

	if rec.CriticalIssueCount > 3 {
		alerts = append(alerts, articlepipeline.QualityAlert{Severity: "warning", Message: "critical issue count above 3"})
	}

	if regression, ok := trailingRegression(window); ok && regression {
		alerts = append(alerts, articlepipeline.QualityAlert{Severity: "warning", Message: "mean AEO score regressed 10+ points over trailing window"})
	}

	return alerts
}

// trailingRegression compares the mean of the last 10 records against the
// mean of the preceding 10; ok is false until at least 20 records exist.
func trailingRegression(window []QualityRecord) (regressed bool, ok bool) {
	if len(window) < 20 {
		return false, false
	}
	recent := window[len(window)-10:]
	preceding := window[len(window)-20 : len(window)-10]
	recentMean := meanScore(recent)
	precedingMean := meanScore(preceding)
	return precedingMean-recentMean >= 10, true
}

func meanScore(records []QualityRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum int
	for _, r := range records {
		sum += r.AEOScore
	}
	return float64(sum) / float64(len(records))
}

// Statistics summarizes the current window for dashboards/health checks.
type Statistics struct {
	MeanAEO          float64
	LowQualityRate   float64 // fraction scoring < 70
	CriticalRate     float64 // fraction scoring < 50
	RecentAlertCount int
}

func (m *QualityMonitor) Statistics() Statistics {
	m.mu.Lock()
	window := append([]QualityRecord(nil), m.records...)
	m.mu.Unlock()

	if len(window) == 0 {
		return Statistics{}
	}

	var sum int
	var low, critical, alertCount int
	for _, r := range window {
		sum += r.AEOScore
		if r.AEOScore < 70 {
			low++
		}
		if r.AEOScore < 50 {
			critical++
		}
		alertCount += len(evaluateAlertRules(r, window))
	}

	n := float64(len(window))
	return Statistics{
		MeanAEO:          float64(sum) / n,
		LowQualityRate:   float64(low) / n,
		CriticalRate:     float64(critical) / n,
		RecentAlertCount: alertCount,
	}
}

func (m *QualityMonitor) deliver(jobID string, alerts []articlepipeline.QualityAlert) {
	metrics := make([]observability.StructuralDriftAlertMetric, 0, len(alerts))
	for _, a := range alerts {
		metrics = append(metrics, observability.StructuralDriftAlertMetric{
			Name:   "article_quality_gate",
			Status: a.Severity,
			Meta: map[string]any{
				"job_id":  jobID,
				"message": a.Message,
			},
		})
	}
	observability.ReportStructuralDrift(context.Background(), m.log, metrics, nil)
}
