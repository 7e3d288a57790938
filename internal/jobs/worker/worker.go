package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	jobrepo "github.com/yungbote/articlegen-backend/internal/data/repos/jobs"
	"github.com/yungbote/articlegen-backend/internal/jobs/runtime"
	"github.com/yungbote/articlegen-backend/internal/pkg/dbctx"
	"github.com/yungbote/articlegen-backend/internal/pkg/envutil"
	"github.com/yungbote/articlegen-backend/internal/pkg/logger"
	"github.com/yungbote/articlegen-backend/internal/services"
)

/*
Worker is the execution engine for the SQL-backed job queue that drives
article generation.

High-level responsibilities:
  - Poll the job_run table for runnable jobs (via JobRunRepo.ClaimNextRunnable)
  - Claim a job with a DB-level lock/lease so only one worker runs it at a time
  - Dispatch the job to the handler registered for its job_type (runtime.Registry)
  - Wrap handler execution with heartbeats, panic recovery, and a safety-net
    Fail() call in case the handler returns an error without failing itself

The worker is infrastructure: it knows nothing about pipeline stages or
quality gates. All of that lives in the registered runtime.Handler, which
interacts with the job only through runtime.Context.
*/
type Worker struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     jobrepo.JobRunRepo
	registry *runtime.Registry
	notify   services.JobNotifier
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, repo jobrepo.JobRunRepo, registry *runtime.Registry, notify services.JobNotifier) *Worker {
	return &Worker{
		db:       db,
		log:      baseLog.With("component", "JobWorker"),
		repo:     repo,
		registry: registry,
		notify:   notify,
	}
}

/*
Start launches the worker pool. It reads WORKER_CONCURRENCY (default 4) and
spawns that many goroutines, each running an independent runLoop(). A given
job is only ever executed by one worker at a time, enforced by the repo's
claim/lease mechanism (SELECT ... FOR UPDATE SKIP LOCKED).
*/
func (w *Worker) Start(ctx context.Context) {
	concurrency := envutil.GetEnvAsInt("WORKER_CONCURRENCY", 4, w.log)
	if concurrency < 1 {
		concurrency = 1
	}
	w.log.Info("Starting job worker pool", "concurrency", concurrency)

	for i := 0; i < concurrency; i++ {
		workerID := i + 1
		go w.runLoop(ctx, workerID)
	}
}

/*
runLoop is the core scheduler loop: every tick it tries to claim a runnable
job, dispatches it to the registered handler, and wraps execution with a
heartbeat goroutine and panic recovery. Retries are durable across process
restarts: a failed job stays in job_run with attempts/last_error_at, and the
claim query alone decides when it becomes runnable again.
*/
func (w *Worker) runLoop(ctx context.Context, workerID int) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	const maxAttempts = 5
	retryDelay := 30 * time.Second
	staleRunning := 30 * time.Minute

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		case <-ticker.C:
			job, err := w.repo.ClaimNextRunnable(dbctx.Context{Ctx: ctx, Tx: w.db}, maxAttempts, retryDelay, staleRunning)
			if err != nil {
				w.log.Warn("ClaimNextRunnable failed", "worker_id", workerID, "error", err)
				continue
			}
			if job == nil {
				continue
			}

			h, ok := w.registry.Get(job.JobType)
			jc := runtime.NewContext(ctx, w.db, job, w.repo, w.notify)

			if !ok {
				w.log.Warn("No handler registered for job_type",
					"worker_id", workerID,
					"job_type", job.JobType,
					"job_id", job.ID,
				)
				jc.Fail("dispatch", &missingHandlerError{JobType: job.JobType})
				continue
			}

			func() {
				stopHB := w.startHeartbeat(ctx, job.ID)
				defer stopHB()

				defer func() {
					if r := recover(); r != nil {
						w.log.Error("Job handler panic",
							"worker_id", workerID,
							"job_id", job.ID,
							"job_type", job.JobType,
							"panic", r,
						)
						jc.Fail("panic", errFromRecover(r))
					}
				}()

				if runErr := h.Run(jc); runErr != nil {
					jc.Fail("run", runErr)
				}
			}()
		}
	}
}

/*
startHeartbeat spawns a goroutine that periodically updates job_run.heartbeat_at
so a long-running pipeline is not mistaken for stuck; if the process crashes
the heartbeat stops and the job becomes reclaimable after staleRunning.
*/
func (w *Worker) startHeartbeat(ctx context.Context, jobID uuid.UUID) func() {
	done := make(chan struct{})
	go func() {
		t := time.NewTicker(30 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-t.C:
				if w == nil || w.repo == nil || w.db == nil || jobID == uuid.Nil {
					continue
				}
				_ = w.repo.Heartbeat(dbctx.Context{Ctx: ctx, Tx: w.db}, jobID)
			}
		}
	}()
	return func() { close(done) }
}

// missingHandlerError marks a claimed job whose job_type has no registered
// handler — usually a wiring/config issue.
type missingHandlerError struct{ JobType string }

func (e *missingHandlerError) Error() string {
	return "no handler registered for job_type=" + e.JobType
}

func errFromRecover(v any) error { return &panicError{Val: v} }

// panicError deliberately avoids leaking the raw panic value into job_run.error;
// the full panic is already logged alongside worker_id/job_id.
type panicError struct{ Val any }

func (e *panicError) Error() string { return "panic: unexpected error" }
