package realtime

import (
	"github.com/google/uuid"

	"github.com/yungbote/articlegen-backend/internal/pkg/logger"
)

// SSEClient is a single subscriber connection multiplexed over one or more
// job channels (the job_id as a string).
type SSEClient struct {
	ID       uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	Logger   *logger.Logger
}
