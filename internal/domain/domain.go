// Package domain re-exports the leaf domain types so callers import one
// stable package path regardless of how the underlying entities are split
// across sub-packages.
package domain

import (
	"github.com/yungbote/articlegen-backend/internal/domain/jobs"
)

type JobRun = jobs.JobRun
