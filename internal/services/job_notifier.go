package services

import (
	"context"
	"encoding/json"

	types "github.com/yungbote/articlegen-backend/internal/domain"
	"github.com/yungbote/articlegen-backend/internal/realtime"
)

// JobNotifier is the side-channel the engine uses to announce a job's
// lifecycle. There is no per-user routing in this domain (the REST API is
// unauthenticated, per spec.md §6): every message is published on the
// job's own id as the channel, so a client polling GET /jobs/{id} can also
// subscribe to an SSE stream on that same id.
type JobNotifier interface {
	JobCreated(job *types.JobRun)
	JobProgress(job *types.JobRun, stage string, progress int, message string)
	JobFailed(job *types.JobRun, stage string, errorMessage string)
	JobDone(job *types.JobRun)
	JobCanceled(job *types.JobRun)
}

type jobNotifier struct {
	emit SSEEmitter
}

func NewJobNotifier(emit SSEEmitter) JobNotifier {
	return &jobNotifier{emit: emit}
}

func (n *jobNotifier) JobCreated(job *types.JobRun) {
	if n == nil || n.emit == nil || job == nil {
		return
	}
	data := map[string]any{"job": job}
	for k, v := range jobLinkData(job) {
		data[k] = v
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: safeJobID(job),
		Event:   realtime.SSEEventJobCreated,
		Data:    data,
	})
}

func (n *jobNotifier) JobProgress(job *types.JobRun, stage string, progress int, message string) {
	if n == nil || n.emit == nil || job == nil {
		return
	}
	data := map[string]any{
		"job_id":   safeJobID(job),
		"stage":    stage,
		"progress": progress,
		"message":  message,
	}
	for k, v := range jobLinkData(job) {
		data[k] = v
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: safeJobID(job),
		Event:   realtime.SSEEventJobProgress,
		Data:    data,
	})
}

func (n *jobNotifier) JobFailed(job *types.JobRun, stage string, errorMessage string) {
	if n == nil || n.emit == nil || job == nil {
		return
	}
	data := map[string]any{
		"job_id": safeJobID(job),
		"stage":  stage,
		"error":  errorMessage,
	}
	for k, v := range jobLinkData(job) {
		data[k] = v
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: safeJobID(job),
		Event:   realtime.SSEEventJobFailed,
		Data:    data,
	})
}

func (n *jobNotifier) JobDone(job *types.JobRun) {
	if n == nil || n.emit == nil || job == nil {
		return
	}
	data := map[string]any{"job_id": safeJobID(job), "job": job}
	for k, v := range jobLinkData(job) {
		data[k] = v
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: safeJobID(job),
		Event:   realtime.SSEEventJobDone,
		Data:    data,
	})
}

func (n *jobNotifier) JobCanceled(job *types.JobRun) {
	if n == nil || n.emit == nil || job == nil {
		return
	}
	data := map[string]any{"job_id": safeJobID(job)}
	for k, v := range jobLinkData(job) {
		data[k] = v
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: safeJobID(job),
		Event:   realtime.SSEEventJobCanceled,
		Data:    data,
	})
}

func safeJobID(job *types.JobRun) string {
	if job == nil {
		return ""
	}
	return job.ID.String()
}

// jobLinkData surfaces the batch_id (if any) from the payload for clients
// that want to correlate SSE messages across a batch without re-parsing
// the full payload themselves.
func jobLinkData(job *types.JobRun) map[string]any {
	if job == nil || len(job.Payload) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(job.Payload, &m); err != nil {
		return nil
	}
	if bid, ok := m["batch_id"]; ok {
		return map[string]any{"batch_id": bid}
	}
	return nil
}
