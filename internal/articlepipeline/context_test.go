package articlepipeline

import (
	"testing"

	"github.com/google/uuid"
)

func TestExecutionContextAddErrorAndHasCriticalError(t *testing.T) {
	ec := NewExecutionContext(uuid.New(), JobConfig{}, nil)
	if ec.HasCriticalError() {
		t.Fatalf("expected no critical error on a fresh context")
	}

	ec.AddError(newStageError(ErrorKindAdvisory, StageFAQ, 0, &AdvisoryStageFailure{Stage: StageFAQ, Message: "x"}))
	if ec.HasCriticalError() {
		t.Fatalf("an advisory error must not count as critical")
	}

	ec.AddError(newStageError(ErrorKindCritical, StageGenerate, 0, &CriticalStageFailure{Stage: StageGenerate, Message: "x"}))
	if !ec.HasCriticalError() {
		t.Fatalf("expected a critical error to be reported")
	}
	if got := len(ec.Errors()); got != 2 {
		t.Fatalf("expected 2 recorded errors, got %d", got)
	}
}

func TestExecutionContextErrorsReturnsSnapshot(t *testing.T) {
	ec := NewExecutionContext(uuid.New(), JobConfig{}, nil)
	ec.AddError(newStageError(ErrorKindAdvisory, StageFAQ, 0, &AdvisoryStageFailure{Stage: StageFAQ, Message: "x"}))

	snap := ec.Errors()
	snap[0].Message = "mutated"

	if got := ec.Errors()[0].Message; got == "mutated" {
		t.Fatalf("Errors() should return a copy, got mutated underlying slice")
	}
}
