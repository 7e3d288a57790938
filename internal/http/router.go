package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/articlegen-backend/internal/http/handlers"
	httpMW "github.com/yungbote/articlegen-backend/internal/http/middleware"
	"github.com/yungbote/articlegen-backend/internal/pkg/logger"
)

type RouterConfig struct {
	JobHandler      *httpH.JobHandler
	RealtimeHandler *httpH.RealtimeHandler
	HealthHandler   *httpH.HealthHandler
	Log             *logger.Logger
}

// NewRouter builds the unauthenticated REST surface described in spec.md §6:
// job submission, status polling, cancellation, listing, and a per-job SSE
// stream for clients that want push updates instead of polling.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.JobHandler != nil {
			api.POST("/jobs", cfg.JobHandler.CreateJob)
			api.GET("/jobs", cfg.JobHandler.ListJobs)
			api.GET("/jobs/:id", cfg.JobHandler.GetJob)
			api.GET("/jobs/:id/status", cfg.JobHandler.GetJobStatus)
			api.DELETE("/jobs/:id", cfg.JobHandler.CancelJob)
		}
		if cfg.RealtimeHandler != nil {
			api.GET("/jobs/:id/stream", cfg.RealtimeHandler.JobStream)
		}
	}

	return r
}
