package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/articlegen-backend/internal/pkg/logger"
	"github.com/yungbote/articlegen-backend/internal/realtime"
	"github.com/yungbote/articlegen-backend/internal/realtime/bus"
	"github.com/yungbote/articlegen-backend/internal/services"
)

type Services struct {
	Hub    *realtime.Hub
	Notify services.JobNotifier
	Jobs   services.JobService
}

func wireServices(ctx context.Context, db *gorm.DB, log *logger.Logger, repos Repos, sseBus bus.Bus) Services {
	log.Info("Wiring services...")

	hub := realtime.NewSSEHub(log)

	var emitter services.SSEEmitter
	if sseBus != nil {
		emitter = &services.BusEmitter{Bus: sseBus}
		go func() {
			if err := sseBus.StartForwarder(ctx, hub.Broadcast); err != nil {
				log.Error("SSE bus forwarder stopped", "error", err)
			}
		}()
	} else {
		emitter = &services.HubEmitter{Hub: hub}
	}

	notify := services.NewJobNotifier(emitter)
	jobs := services.NewJobService(db, log, repos.JobRun, notify)

	return Services{
		Hub:    hub,
		Notify: notify,
		Jobs:   jobs,
	}
}
