package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	jobrepo "github.com/yungbote/articlegen-backend/internal/data/repos/jobs"
	types "github.com/yungbote/articlegen-backend/internal/domain"
	"github.com/yungbote/articlegen-backend/internal/pkg/dbctx"
	"github.com/yungbote/articlegen-backend/internal/pkg/logger"
)

// ArticleGenerationJobType is the job_type dispatched to the article
// generation pipeline handler registered in runtime.Registry.
const ArticleGenerationJobType = "article_generation"

// JobService is the thin layer between the REST API and the durable job
// queue: it enqueues generation requests, answers status queries, and
// requests cancellation. It holds no pipeline logic of its own.
type JobService interface {
	Enqueue(ctx context.Context, tx *gorm.DB, request map[string]any, batchID *uuid.UUID) (*types.JobRun, error)
	GetByID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*types.JobRun, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.JobRun, error)
	Cancel(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*types.JobRun, error)
}

type jobService struct {
	db     *gorm.DB
	log    *logger.Logger
	repo   jobrepo.JobRunRepo
	notify JobNotifier
}

func NewJobService(db *gorm.DB, baseLog *logger.Logger, repo jobrepo.JobRunRepo, notify JobNotifier) JobService {
	return &jobService{
		db:     db,
		log:    baseLog.With("service", "JobService"),
		repo:   repo,
		notify: notify,
	}
}

// Enqueue validates the minimal required fields (keyword, company_url, per
// spec.md §6) and persists a queued job_run row carrying the full request as
// its payload. The worker's article-generation handler decodes the payload
// into a JobConfig before the engine runs.
func (s *jobService) Enqueue(ctx context.Context, tx *gorm.DB, request map[string]any, batchID *uuid.UUID) (*types.JobRun, error) {
	keyword, _ := request["keyword"].(string)
	companyURL, _ := request["company_url"].(string)
	if keyword == "" {
		return nil, fmt.Errorf("missing keyword")
	}
	if companyURL == "" {
		return nil, fmt.Errorf("missing company_url")
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	payloadBytes, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal request payload: %w", err)
	}

	now := time.Now()
	job := &types.JobRun{
		ID:        uuid.New(),
		BatchID:   batchID,
		JobType:   ArticleGenerationJobType,
		Status:    "queued",
		Stage:     "queued",
		Progress:  0,
		Message:   "Queued",
		Payload:   datatypes.JSON(payloadBytes),
		Result:    datatypes.JSON([]byte(`{}`)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.repo.Create(dbctx.Context{Ctx: ctx, Tx: transaction}, job)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.notify.JobCreated(created)
	return created, nil
}

func (s *jobService) GetByID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*types.JobRun, error) {
	if jobID == uuid.Nil {
		return nil, fmt.Errorf("missing job id")
	}
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}
	job, err := s.repo.GetByID(dbctx.Context{Ctx: ctx, Tx: transaction}, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job not found")
	}
	return job, nil
}

func (s *jobService) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.JobRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}
	return s.repo.List(dbctx.Context{Ctx: ctx, Tx: transaction}, limit, offset)
}

// Cancel marks a non-terminal job canceled. A queued job is then never
// claimed. A job that is already running is not interrupted: its context is
// not canceled, so its stages run to the end, but runtime.Context does not
// overwrite the canceled row. Terminal jobs return an error rather than
// silently succeeding, so DELETE /jobs/{id} can map to 409 per spec.md §6.
func (s *jobService) Cancel(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*types.JobRun, error) {
	job, err := s.GetByID(ctx, tx, jobID)
	if err != nil {
		return nil, err
	}

	switch job.Status {
	case "succeeded", "failed", "canceled":
		return nil, fmt.Errorf("job already terminal: %s", job.Status)
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	applied, err := s.repo.UpdateFieldsUnlessStatus(
		dbctx.Context{Ctx: ctx, Tx: transaction},
		jobID,
		[]string{"succeeded", "failed", "canceled"},
		map[string]interface{}{
			"status":  "canceled",
			"message": "Canceled",
		},
	)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("job already terminal")
	}

	job.Status = "canceled"
	job.Message = "Canceled"
	s.notify.JobCanceled(job)
	return job, nil
}
