package articlepipeline

import "context"

// Stage is the contract every pipeline step implements. Execute mutates the
// ExecutionContext in place and returns an error using one of the typed
// kinds in errors.go; the engine inspects the error's concrete type (via
// errors.As) to recognise a validation failure, a cancellation, or an
// advisory failure. Any other error is treated as critical when the stage's
// Critical() is true and as advisory otherwise.
//
// Implementations must be safe to invoke at most once per ExecutionContext
// per regeneration attempt — the engine re-runs the sequential prefix
// (stages 2 and 3, and 3b if applicable) on a regeneration attempt, so
// Execute must not assume it is called exactly once over a job's lifetime.
type Stage interface {
	ID() StageID
	Name() string
	// Critical reports whether a failure here aborts the job outright.
	Critical() bool
	Execute(ctx context.Context, ec *ExecutionContext) error
}

// baseStage centralizes ID()/Name()/Critical() for concrete stage types so
// each stage_*.go file only needs to implement Execute.
type baseStage struct {
	id       StageID
	name     string
	critical bool
}

func (b baseStage) ID() StageID      { return b.id }
func (b baseStage) Name() string     { return b.name }
func (b baseStage) Critical() bool   { return b.critical }
