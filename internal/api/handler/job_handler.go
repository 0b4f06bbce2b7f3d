package handler

import (
	"encoding/json"
	"net/http"

	"webhook-etl/internal/model"
	"webhook-etl/internal/pipeline"
	"webhook-etl/pkg/router"
)

// JobHandler serves the ETL job endpoints
type JobHandler struct {
	manager *pipeline.Manager
}

// NewJobHandler creates a handler over the shared job manager
func NewJobHandler(m *pipeline.Manager) *JobHandler {
	return &JobHandler{manager: m}
}

// CreateJob submits a new ETL job
// @Summary Submit a job
// @Description Validate and record a new ETL job in pending state. The job is not started.
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body model.JobSpec true "Job specification"
// @Success 201 {object} model.Job
// @Failure 400 {object} map[string]interface{} "Invalid or unsupported specification"
// @Router /jobs [post]
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var spec model.JobSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON payload: "+err.Error())
		return
	}

	job, err := h.manager.Submit(spec)
	if err != nil {
		writeJobError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, job)
}

// ListJobs lists jobs newest first
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by job type"
// @Success 200 {object} map[string]interface{}
// @Router /jobs [get]
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobs := h.manager.List(pipeline.ListOptions{
		Status: model.JobStatus(q.Get("status")),
		Type:   model.JobType(q.Get("type")),
	})
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// GetJob returns one job
// @Summary Get a job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} model.Job
// @Failure 404 {object} map[string]interface{}
// @Router /jobs/{id} [get]
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.manager.Get(router.Segment(r, 3))
	if err != nil {
		writeJobError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// GetJobProgress returns the progress snapshot of a job
// @Summary Get job progress
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /jobs/{id}/progress [get]
func (h *JobHandler) GetJobProgress(w http.ResponseWriter, r *http.Request) {
	job, err := h.manager.Get(router.Segment(r, 3))
	if err != nil {
		writeJobError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobId":    job.ID,
		"status":   job.Status,
		"progress": job.Progress,
		"running":  h.manager.IsJobRunning(job.ID),
	})
}

// StartJob launches a run in the background
// @Summary Start a job
// @Description Runs extract, transform and load in the background. Fails with 409 while the job is running.
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 202 {object} model.Job
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /jobs/{id}/start [post]
func (h *JobHandler) StartJob(w http.ResponseWriter, r *http.Request) {
	id := router.Segment(r, 3)
	if _, err := h.manager.Start(r.Context(), id); err != nil {
		writeJobError(w, err)
		return
	}
	job, err := h.manager.Get(id)
	if err != nil {
		writeJobError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, job)
}

// CancelJob stops a running job
// @Summary Cancel a job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /jobs/{id}/cancel [post]
func (h *JobHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id := router.Segment(r, 3)
	cancelled, err := h.manager.Cancel(id)
	if err != nil {
		writeJobError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobId":     id,
		"cancelled": cancelled,
	})
}
