package articlepipeline

import "testing"

func TestProgressTrackerReportsMonotonicPercent(t *testing.T) {
	var calls []int
	tracker := newProgressTracker(func(stage StageID, percent int, done bool, errTag string) {
		calls = append(calls, percent)
	})

	// StageMergeAndLink (88) reporting before StageCitations (80, the end of
	// the fan-out band) must not let the tracker regress below 88 afterward.
	tracker.report(StageMergeAndLink, true, "")
	tracker.report(StageCitations, true, "")

	if len(calls) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(calls))
	}
	if calls[1] < calls[0] {
		t.Fatalf("expected monotonic percent, got %v then %v", calls[0], calls[1])
	}
}

func TestProgressTrackerNilCallbackIsNoOp(t *testing.T) {
	tracker := newProgressTracker(nil)
	tracker.report(StageDataFetch, true, "") // must not panic
}

func TestStagePercentKnownStages(t *testing.T) {
	cases := map[StageID]int{
		StageDataFetch:  10,
		StagePersist:    96,
		StageSimilarity: 100,
	}
	for id, want := range cases {
		if got := stagePercent(id); got != want {
			t.Fatalf("stagePercent(%s): expected %d, got %d", id, want, got)
		}
	}
}
