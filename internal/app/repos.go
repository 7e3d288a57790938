package app

import (
	"github.com/yungbote/articlegen-backend/internal/data/repos/jobs"
	"github.com/yungbote/articlegen-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type Repos struct {
	JobRun jobs.JobRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		JobRun: jobs.NewJobRunRepo(db, log),
	}
}
