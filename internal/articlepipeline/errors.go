package articlepipeline

import "fmt"

// CriticalStageFailure aborts the job immediately. Raised only by stages 0,
// 2, 10, and 11.
type CriticalStageFailure struct {
	Stage   StageID
	Message string
	Cause   error
}

func (e *CriticalStageFailure) Error() string {
	return fmt.Sprintf("critical failure in stage %s: %s", e.Stage, e.Message)
}

func (e *CriticalStageFailure) Unwrap() error { return e.Cause }

// AdvisoryStageFailure is recorded but never aborts the job. Raised by
// DataFetch (0), Extract (3), Refine (3b), the fan-out stages 4..9, and
// Similarity (12).
type AdvisoryStageFailure struct {
	Stage   StageID
	Message string
	Cause   error
}

func (e *AdvisoryStageFailure) Error() string {
	return fmt.Sprintf("advisory failure in stage %s: %s", e.Stage, e.Message)
}

func (e *AdvisoryStageFailure) Unwrap() error { return e.Cause }

// ValidationFailure means Stage 10's output failed structural validation
// against the required article schema. Treated as critical.
type ValidationFailure struct {
	Field   string
	Message string
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("validation failure (%s): %s", e.Field, e.Message)
}

// QualityUnderflow means the regeneration loop exhausted its attempts
// without clearing the AEO gate threshold. Non-fatal: the job still
// succeeds with the best attempt on record.
type QualityUnderflow struct {
	BestScore int
	Attempts  int
}

func (e *QualityUnderflow) Error() string {
	return fmt.Sprintf("quality gate not cleared after %d attempts, best score %d", e.Attempts, e.BestScore)
}

// CancelRequested signals the job's run was canceled by the caller.
type CancelRequested struct {
	Stage StageID
}

func (e *CancelRequested) Error() string {
	return fmt.Sprintf("job canceled during stage %s", e.Stage)
}

// ConfigError means the StageFactory/Registry could not be built — a
// programming or deployment error, never a per-job condition.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("pipeline config error: %s", e.Message) }

// newStageError builds the append-only record stored on the
// ExecutionContext for any of the above.
func newStageError(kind ErrorKind, stage StageID, attempt int, err error) StageError {
	return StageError{
		Kind:      kind,
		StageID:   stage,
		StageName: stage.String(),
		Message:   err.Error(),
		Attempt:   attempt,
	}
}
