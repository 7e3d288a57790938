package articlepipeline

import (
	"context"
	"testing"
)

type noopStage struct {
	baseStage
}

func (s *noopStage) Execute(ctx context.Context, ec *ExecutionContext) error { return nil }

func fullRequiredStageSet() []Stage {
	stages := make([]Stage, 0, len(requiredStageIDs))
	for _, id := range requiredStageIDs {
		stages = append(stages, &noopStage{baseStage{id: id, name: id.String(), critical: criticalStageIDs[id]}})
	}
	return stages
}

func TestNewStageRegistryAcceptsCompleteSet(t *testing.T) {
	reg, err := newStageRegistry(fullRequiredStageSet())
	if err != nil {
		t.Fatalf("newStageRegistry: %v", err)
	}
	for _, id := range requiredStageIDs {
		if _, ok := reg.Get(id); !ok {
			t.Fatalf("expected stage %s to be registered", id)
		}
	}
}

func TestNewStageRegistryRejectsMissingStage(t *testing.T) {
	stages := fullRequiredStageSet()
	stages = stages[1:] // drop StageDataFetch

	if _, err := newStageRegistry(stages); err == nil {
		t.Fatalf("expected error for missing required stage")
	}
}

func TestNewStageRegistryRejectsDuplicateStage(t *testing.T) {
	stages := fullRequiredStageSet()
	stages = append(stages, stages[0])

	if _, err := newStageRegistry(stages); err == nil {
		t.Fatalf("expected error for duplicate stage id")
	}
}

func TestNewStageRegistryRejectsWrongCriticality(t *testing.T) {
	stages := fullRequiredStageSet()
	for i, s := range stages {
		if s.ID() == StageGenerate {
			stages[i] = &noopStage{baseStage{id: StageGenerate, name: "Generate", critical: false}}
		}
	}

	if _, err := newStageRegistry(stages); err == nil {
		t.Fatalf("expected error for StageGenerate registered as non-critical")
	}
}

func TestNewStageRegistryRejectsUnknownStage(t *testing.T) {
	stages := fullRequiredStageSet()
	stages = append(stages, &noopStage{baseStage{id: StageID(999), name: "Bogus", critical: false}})

	if _, err := newStageRegistry(stages); err == nil {
		t.Fatalf("expected error for unknown stage id")
	}
}

func TestStageRegistryFanOutStagesIsOrderedAndComplete(t *testing.T) {
	reg, err := newStageRegistry(fullRequiredStageSet())
	if err != nil {
		t.Fatalf("newStageRegistry: %v", err)
	}
	fanOut := reg.FanOutStages()
	if len(fanOut) != len(fanOutStageIDs) {
		t.Fatalf("expected %d fan-out stages, got %d", len(fanOutStageIDs), len(fanOut))
	}
	for i := 1; i < len(fanOut); i++ {
		if fanOut[i-1].ID() >= fanOut[i].ID() {
			t.Fatalf("expected FanOutStages in ascending id order, got %v then %v", fanOut[i-1].ID(), fanOut[i].ID())
		}
	}
}

func TestStageFactoryBuildProducesAllRequiredStages(t *testing.T) {
	f := NewStageFactory(Collaborators{})
	reg, err := f.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, id := range requiredStageIDs {
		if _, ok := reg.Get(id); !ok {
			t.Fatalf("expected stage %s registered by StageFactory.Build", id)
		}
	}
}
