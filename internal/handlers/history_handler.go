package handlers

import (
	"net/http"
	"strconv"

	"skywatch/internal/service"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	service service.HistoryService
}

func NewHistoryHandler(service service.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

type historyRequest struct {
	Lat   *float64 `json:"lat" binding:"required"`
	Lon   *float64 `json:"lon" binding:"required"`
	Limit int      `json:"limit"`
}

func (h *HistoryHandler) GetHistory(c *gin.Context) {
	ctx := c.Request.Context()

	var req historyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing lat/lon parameters"})
		return
	}

	history, err := h.service.GetMergedHistory(ctx, *req.Lat, *req.Lon, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to get history",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": history,
	})
}

// ExportHistory writes the merged history to an .xlsx workbook and streams
// the file back.
func (h *HistoryHandler) ExportHistory(c *gin.Context) {
	ctx := c.Request.Context()

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing lat/lon parameters"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	path, err := h.service.ExportHistory(ctx, lat, lon, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to export history",
			"message": err.Error(),
		})
		return
	}

	c.File(path)
}
