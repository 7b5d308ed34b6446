package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/asset-store-fs/internal/domain"
)

// JobQueue is the subset of the queue manager the handlers use
type JobQueue interface {
	Enqueue(action domain.JobAction, assets []domain.Asset) (*domain.Job, error)
	GetJob(id string) (*domain.Job, error)
	ListJobs(filters map[string]interface{}) ([]*domain.Job, error)
	IsRunning() bool
}

// JobHandler handles queued lifecycle requests
type JobHandler struct {
	queue  JobQueue
	logger *zap.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(queue JobQueue, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		queue:  queue,
		logger: logger,
	}
}

// AddJobRequest represents a request to queue a lifecycle operation
type AddJobRequest struct {
	Action string         `json:"action" binding:"required"`
	Assets []domain.Asset `json:"assets" binding:"required"`
}

// AddJob handles POST /api/v1/jobs
func (h *JobHandler) AddJob(c *gin.Context) {
	var req AddJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	action := domain.JobAction(req.Action)
	if !domain.ValidateAction(action) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action"})
		return
	}

	job, err := h.queue.Enqueue(action, req.Assets)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Failed to queue job", zap.Error(err))
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, job)
}

// GetJob handles GET /api/v1/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	id := c.Param("id")

	job, err := h.queue.GetJob(id)
	if err != nil {
		h.logger.Error("Failed to get job", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobs handles GET /api/v1/jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	filters := make(map[string]interface{})
	for _, key := range []string{"status", "action", "asset_key"} {
		if v := c.Query(key); v != "" {
			filters[key] = v
		}
	}

	jobs, err := h.queue.ListJobs(filters)
	if err != nil {
		h.logger.Error("Failed to list jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, jobs)
}
