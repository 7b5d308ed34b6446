package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/asset-store-fs/internal/domain"
)

// Version is reported by the health endpoint
var Version = "dev"

// QueueStatus reports whether background processing is active
type QueueStatus interface {
	IsRunning() bool
}

// StatsProvider reports ledger statistics
type StatsProvider interface {
	GetStats() (*domain.AssetStats, error)
}

// HealthHandler handles health check requests
type HealthHandler struct {
	queue QueueStatus
	stats StatsProvider
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(queue QueueStatus, stats StatsProvider) *HealthHandler {
	return &HealthHandler{
		queue: queue,
		stats: stats,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Queue   struct {
		Running bool `json:"running"`
	} `json:"queue"`
	Assets *domain.AssetStats `json:"assets,omitempty"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: Version,
	}
	response.Queue.Running = h.queue.IsRunning()
	if h.stats != nil {
		if stats, err := h.stats.GetStats(); err == nil {
			response.Assets = stats
		}
	}

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.queue.IsRunning() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "queue manager not running",
		})
		return
	}

	if h.stats != nil {
		if _, err := h.stats.GetStats(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": "asset ledger unavailable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
