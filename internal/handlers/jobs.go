package handlers

import (
	"fmt"
	"net/http"

	"interpretation-service/internal/apperror"
	"interpretation-service/internal/logger"
	"interpretation-service/internal/models"
	"interpretation-service/internal/redis"

	"github.com/google/uuid"
)

// JobHandler представляет обработчик для заявок на перевод
type JobHandler struct {
	jobService  JobService
	producer    EventProducer
	redisClient RedisClient
	log         *logger.Logger
}

// NewJobHandler создает новый обработчик заявок
func NewJobHandler(jobService JobService, producer EventProducer, redisClient RedisClient, log *logger.Logger) *JobHandler {
	return &JobHandler{
		jobService:  jobService,
		producer:    producer,
		redisClient: redisClient,
		log:         log,
	}
}

// CreateJob создает заявку
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CreateJobRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	job, err := h.jobService.CreateJob(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create job")
		return
	}

	if err := h.producer.PublishJobCreated(job); err != nil {
		h.log.WithError(err).WithField("job_id", job.ID).Error("Failed to publish job created event")
	}

	h.invalidateLists(r)
	cacheKey := redis.GenerateKey(redis.KeyPrefixJob, job.ID.String())
	if err := h.redisClient.Set(r.Context(), cacheKey, job, defaultCacheTTL); err != nil {
		h.log.WithError(err).Error("Failed to cache job")
	}

	writeJSONResponse(w, http.StatusCreated, job)
}

// GetJob получает заявку по ID
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	jobID, err := extractUUIDFromPath(r.URL.Path, "/api/jobs/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	cacheKey := redis.GenerateKey(redis.KeyPrefixJob, jobID.String())

	var cached models.Job
	if err := h.redisClient.Get(r.Context(), cacheKey, &cached); err == nil {
		h.log.WithField("job_id", jobID).Debug("Job retrieved from cache")
		writeJSONResponse(w, http.StatusOK, &cached)
		return
	}

	job, err := h.jobService.GetJob(r.Context(), jobID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get job")
		return
	}

	if err := h.redisClient.Set(r.Context(), cacheKey, job, defaultCacheTTL); err != nil {
		h.log.WithError(err).Error("Failed to cache job")
	}

	writeJSONResponse(w, http.StatusOK, job)
}

// GetJobs получает список заявок с фильтрацией по статусу и переводчику
func (h *JobHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	query := r.URL.Query()

	var status *models.JobStatus
	if statusStr := query.Get("status"); statusStr != "" {
		s := models.JobStatus(statusStr)
		if !s.Valid() {
			writeServiceError(w, h.log, apperror.InvalidField("status", fmt.Sprintf("unknown job status: %q", statusStr), nil), "Failed to get jobs")
			return
		}
		status = &s
	}

	var interpreterID *uuid.UUID
	if idStr := query.Get("interpreter_id"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid interpreter ID")
			return
		}
		interpreterID = &id
	}

	limit, offset := parsePagination(r)

	cacheKey := redis.GenerateKey(redis.KeyPrefixJobsList, query.Get("status"), query.Get("interpreter_id"),
		fmt.Sprint(limit), fmt.Sprint(offset))

	var cached []*models.Job
	if err := h.redisClient.Get(r.Context(), cacheKey, &cached); err == nil {
		writeJSONResponse(w, http.StatusOK, cached)
		return
	}

	jobs, err := h.jobService.GetJobs(r.Context(), status, interpreterID, limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get jobs")
		return
	}

	if err := h.redisClient.Set(r.Context(), cacheKey, jobs, defaultCacheTTL); err != nil {
		h.log.WithError(err).Error("Failed to cache job list")
	}

	writeJSONResponse(w, http.StatusOK, jobs)
}

// UpdateJobStatus меняет статус заявки
func (h *JobHandler) UpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	jobID, err := extractUUIDFromPath(r.URL.Path, "/api/jobs/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	var req models.UpdateJobStatusRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	oldStatus, err := h.jobService.UpdateJobStatus(r.Context(), jobID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update job status")
		return
	}

	if oldStatus != req.Status {
		if err := h.producer.PublishJobStatusChanged(jobID, oldStatus, req.Status, req.InterpreterID); err != nil {
			h.log.WithError(err).WithField("job_id", jobID).Error("Failed to publish job status changed event")
		}
	}

	cacheKey := redis.GenerateKey(redis.KeyPrefixJob, jobID.String())
	if err := h.redisClient.Delete(r.Context(), cacheKey); err != nil {
		h.log.WithError(err).Error("Failed to invalidate job cache")
	}
	h.invalidateLists(r)

	writeJSONResponse(w, http.StatusOK, map[string]string{
		"message":    "Job status updated successfully",
		"old_status": string(oldStatus),
		"new_status": string(req.Status),
	})
}

func (h *JobHandler) invalidateLists(r *http.Request) {
	if err := h.redisClient.DeleteByPrefix(r.Context(), redis.KeyPrefixJobsList); err != nil {
		h.log.WithError(err).Error("Failed to invalidate job list cache")
	}
}
