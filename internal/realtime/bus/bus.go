package bus

import (
	"context"

	"github.com/yungbote/articlegen-backend/internal/realtime"
)

// Bus decouples the notifier from transport: a single-process deployment
// can use an in-memory Hub directly, while a multi-instance deployment
// needs messages forwarded across processes (redisBus).
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}










