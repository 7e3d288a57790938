package services

import (
	"context"

	"github.com/yungbote/articlegen-backend/internal/platform/ctxutil"
	"github.com/yungbote/articlegen-backend/internal/realtime"
	"github.com/yungbote/articlegen-backend/internal/realtime/bus"
)

// SSEEmitter is the narrow surface JobNotifier needs: publish a message for
// fanout, independent of whether delivery is local-only or Redis-backed.
type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

// HubEmitter broadcasts directly to a local in-process Hub. The app wires
// it only when it is given a nil bus; its client setup always builds one.
type HubEmitter struct{ Hub *realtime.Hub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	withTrace(ctx, &msg)
	e.Hub.Broadcast(msg)
}

// BusEmitter publishes through a bus.Bus (Redis pub/sub in production,
// local passthrough in dev), letting every subscribed instance's Hub
// receive the forwarded message.
type BusEmitter struct{ Bus bus.Bus }

func (e *BusEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	withTrace(ctx, &msg)
	_ = e.Bus.Publish(ctx, msg)
}

func withTrace(ctx context.Context, msg *realtime.SSEMessage) {
	td := ctxutil.GetTraceData(ctx)
	if td == nil {
		return
	}
	if msg.TraceID == "" {
		msg.TraceID = td.TraceID
	}
	if msg.RequestID == "" {
		msg.RequestID = td.RequestID
	}
}
