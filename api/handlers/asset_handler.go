package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/asset-store-fs/internal/domain"
)

// AssetService is the subset of the lifecycle service the handlers use
type AssetService interface {
	Download(ctx context.Context, asset domain.Asset) (*domain.Asset, error)
	Delete(ctx context.Context, assets []domain.Asset) (*domain.Asset, error)
	Unpublish(ctx context.Context, asset domain.Asset) (*domain.Asset, error)
	GetRecord(uid, locale string) (*domain.AssetRecord, error)
	ListRecords(filters map[string]interface{}) ([]*domain.AssetRecord, error)
	GetStats() (*domain.AssetStats, error)
}

// AssetHandler handles synchronous asset lifecycle requests
type AssetHandler struct {
	service AssetService
	logger  *zap.Logger
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(service AssetService, logger *zap.Logger) *AssetHandler {
	return &AssetHandler{
		service: service,
		logger:  logger,
	}
}

// AssetRequest carries a single asset
type AssetRequest struct {
	Asset *domain.Asset `json:"asset" binding:"required"`
}

// DeleteRequest carries the asset group to delete
type DeleteRequest struct {
	Assets []domain.Asset `json:"assets"`
}

// Download handles POST /api/v1/assets/download
func (h *AssetHandler) Download(c *gin.Context) {
	var req AssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asset, err := h.service.Download(c.Request.Context(), *req.Asset)
	if err != nil {
		h.fail(c, "download", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// Delete handles POST /api/v1/assets/delete
func (h *AssetHandler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asset, err := h.service.Delete(c.Request.Context(), req.Assets)
	if err != nil {
		h.fail(c, "delete", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// Unpublish handles POST /api/v1/assets/unpublish
func (h *AssetHandler) Unpublish(c *gin.Context) {
	var req AssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asset, err := h.service.Unpublish(c.Request.Context(), *req.Asset)
	if err != nil {
		h.fail(c, "unpublish", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// ListRecords handles GET /api/v1/assets
func (h *AssetHandler) ListRecords(c *gin.Context) {
	filters := make(map[string]interface{})
	for _, key := range []string{"status", "locale", "uid"} {
		if v := c.Query(key); v != "" {
			filters[key] = v
		}
	}

	records, err := h.service.ListRecords(filters)
	if err != nil {
		h.logger.Error("Failed to list asset records", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}

// GetStats handles GET /api/v1/assets/stats
func (h *AssetHandler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats()
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetRecord handles GET /api/v1/assets/:locale/:uid
func (h *AssetHandler) GetRecord(c *gin.Context) {
	record, err := h.service.GetRecord(c.Param("uid"), c.Param("locale"))
	if err != nil {
		h.logger.Error("Failed to get asset record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *AssetHandler) fail(c *gin.Context, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Asset operation failed", zap.String("op", op), zap.Error(err))
	} else {
		h.logger.Warn("Asset operation rejected", zap.String("op", op), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
