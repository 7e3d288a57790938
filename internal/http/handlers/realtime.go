package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/articlegen-backend/internal/pkg/logger"
	"github.com/yungbote/articlegen-backend/internal/realtime"
)

// RealtimeHandler serves per-job SSE streams. Unlike a multi-tenant API,
// there is no user-global channel to subscribe every connection to: each
// stream subscribes to exactly one job_id channel, matching what JobNotifier
// publishes on.
type RealtimeHandler struct {
	Log *logger.Logger
	Hub *realtime.Hub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{Log: log, Hub: hub}
}

// GET /jobs/:id/stream
func (h *RealtimeHandler) JobStream(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	client := h.Hub.NewSSEClient(uuid.Nil)
	client.Logger = h.Log.With("SSEClientID", client.ID, "job_id", jobID)
	h.Hub.AddChannel(client, jobID.String())

	h.Hub.ServeHTTP(c.Writer, c.Request, client)

	h.Hub.CloseClient(client)
}
