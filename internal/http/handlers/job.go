package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/articlegen-backend/internal/http/response"
	"github.com/yungbote/articlegen-backend/internal/services"
)

type JobHandler struct {
	jobs services.JobService
}

func NewJobHandler(jobs services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// createJobRequest mirrors spec.md §6's POST /jobs body: only keyword and
// company_url are required, everything else is forwarded verbatim into the
// job payload for the article handler to decode, except that a batch_id which does not
// parse as a UUID is dropped.
type createJobRequest struct {
	Keyword        string         `json:"keyword"`
	CompanyURL     string         `json:"company_url"`
	CompanyName    string         `json:"company_name,omitempty"`
	Language       string         `json:"language,omitempty"`
	Country        string         `json:"country,omitempty"`
	WordCount      int            `json:"word_count,omitempty"`
	Tone           string         `json:"tone,omitempty"`
	Options        map[string]any `json:"options,omitempty"`
	SystemPrompts  []string       `json:"system_prompts,omitempty"`
	BatchID        string         `json:"batch_id,omitempty"`
}

// POST /jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	payload := map[string]any{
		"keyword":     req.Keyword,
		"company_url": req.CompanyURL,
	}
	if req.CompanyName != "" {
		payload["company_name"] = req.CompanyName
	}
	if req.Language != "" {
		payload["language"] = req.Language
	}
	if req.Country != "" {
		payload["country"] = req.Country
	}
	if req.WordCount > 0 {
		payload["word_count"] = req.WordCount
	}
	if req.Tone != "" {
		payload["tone"] = req.Tone
	}
	if req.Options != nil {
		payload["options"] = req.Options
	}
	if len(req.SystemPrompts) > 0 {
		payload["system_prompts"] = req.SystemPrompts
	}

	var batchID *uuid.UUID
	if req.BatchID != "" {
		if parsed, err := uuid.Parse(req.BatchID); err == nil {
			batchID = &parsed
			payload["batch_id"] = req.BatchID
		}
	}

	job, err := h.jobs.Enqueue(c.Request.Context(), nil, payload, batchID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "enqueue_failed", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":     job.ID,
		"status":     job.Status,
		"created_at": job.CreatedAt,
	})
}

// GET /jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	job, err := h.jobs.GetByID(c.Request.Context(), nil, jobID)
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "job_not_found", err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// GET /jobs/:id/status
func (h *JobHandler) GetJobStatus(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	job, err := h.jobs.GetByID(c.Request.Context(), nil, jobID)
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "job_not_found", err)
		return
	}
	resp := gin.H{
		"status":              job.Status,
		"progress_percentage": job.Progress,
		"current_stage":       job.Stage,
	}
	if job.Error != "" {
		resp["error_message"] = job.Error
	}
	response.RespondOK(c, resp)
}

// DELETE /jobs/:id
func (h *JobHandler) CancelJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	job, err := h.jobs.Cancel(c.Request.Context(), nil, jobID)
	if err != nil {
		status := http.StatusBadRequest
		if strings.Contains(strings.ToLower(err.Error()), "terminal") {
			status = http.StatusConflict
		} else if strings.Contains(strings.ToLower(err.Error()), "not found") {
			status = http.StatusNotFound
		}
		response.RespondError(c, status, "cancel_job_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// GET /jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	limit := 50
	offset := 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	jobs, err := h.jobs.List(c.Request.Context(), nil, limit, offset)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_jobs_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"jobs": jobs})
}
