package bus

import (
	"context"

	"github.com/yungbote/articlegen-backend/internal/realtime"
)

// localBus is a single-process Bus: Publish hands the message straight to
// the registered forwarder callback, no network hop. Used when neither
// REDIS_URL nor REDIS_ADDR is set, so a single-instance deployment doesn't
// require Redis.
type localBus struct {
	onMsg func(realtime.SSEMessage)
}

func NewLocalBus() Bus {
	return &localBus{}
}

func (b *localBus) Publish(_ context.Context, msg realtime.SSEMessage) error {
	if b.onMsg != nil {
		b.onMsg(msg)
	}
	return nil
}

func (b *localBus) StartForwarder(_ context.Context, onMsg func(m realtime.SSEMessage)) error {
	b.onMsg = onMsg
	return nil
}

func (b *localBus) Close() error { return nil }
