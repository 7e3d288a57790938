package articlepipeline

import "sync"

// orderedStages is the fixed dispatch order, used only for progress
// percentage mapping — the engine's actual dependency order is enforced by
// the dispatch logic in engine.go, not by this slice.
var orderedStages = []StageID{
	StageDataFetch,
	StagePromptBuild,
	StageGenerate,
	StageExtract,
	StageRefine,
	StageCitations, StageInternalLinks, StageToC, StageMetadata, StageFAQ, StageImage,
	StageMergeAndLink,
	StagePersist,
	StageSimilarity,
}

// parallelBandStart/End is the percentage band the 4..9 fan-out shares.
// Each parallel stage reports parallelBandEnd on its own as soon as it
// settles; there is no "in progress" report for the band, and
// parallelBandStart is not used in any report.
const (
	parallelBandStart = 40
	parallelBandEnd   = 80
)

// stagePercent returns the percent-complete value reported when stage
// finishes, on a fixed, monotonically increasing scale. Stages 4..9 all
// report parallelBandEnd on completion since the engine waits for the
// whole fan-out before advancing.
func stagePercent(stage StageID) int {
	switch stage {
	case StageDataFetch:
		return 10
	case StagePromptBuild:
		return 20
	case StageGenerate:
		return 30
	case StageExtract:
		return 35
	case StageRefine:
		return 38
	case StageCitations, StageInternalLinks, StageToC, StageMetadata, StageFAQ, StageImage:
		return parallelBandEnd
	case StageMergeAndLink:
		return 88
	case StagePersist:
		return 96
	case StageSimilarity:
		return 100
	default:
		return 0
	}
}

// progressTracker wraps a ProgressFunc with monotonicity: a stage that
// finishes out of the nominal order (e.g. an advisory failure racing the
// fan-out) never reports a percent lower than one already reported.
type progressTracker struct {
	mu      sync.Mutex
	cb      ProgressFunc
	highest int
}

func newProgressTracker(cb ProgressFunc) *progressTracker {
	return &progressTracker{cb: cb}
}

func (t *progressTracker) report(stage StageID, done bool, errTag string) {
	if t == nil || t.cb == nil {
		return
	}
	percent := stagePercent(stage)
	t.mu.Lock()
	if percent < t.highest {
		percent = t.highest
	} else {
		t.highest = percent
	}
	t.mu.Unlock()
	t.cb(stage, percent, done, errTag)
}
