package app

import (
	"github.com/gin-gonic/gin"

	httpapi "github.com/yungbote/articlegen-backend/internal/http"
	httpH "github.com/yungbote/articlegen-backend/internal/http/handlers"
	"github.com/yungbote/articlegen-backend/internal/pkg/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Realtime *httpH.RealtimeHandler
	Job      *httpH.JobHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Realtime: httpH.NewRealtimeHandler(log, services.Hub),
		Job:      httpH.NewJobHandler(services.Jobs),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers) *gin.Engine {
	return httpapi.NewRouter(httpapi.RouterConfig{
		HealthHandler:   handlers.Health,
		RealtimeHandler: handlers.Realtime,
		JobHandler:      handlers.Job,
		Log:             log,
	})
}
