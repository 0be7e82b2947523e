package handlers

import (
	"net/http"

	"skywatch/internal/models"
	"skywatch/internal/service"

	"github.com/gin-gonic/gin"
)

type AdviceHandler struct {
	service service.AdviceService
}

func NewAdviceHandler(service service.AdviceService) *AdviceHandler {
	return &AdviceHandler{service: service}
}

type adviceRequest struct {
	WeatherData           map[string]any `json:"weather_data"`
	LastUpdateWeatherData map[string]any `json:"last_update_weather_data"`
	PreviousWeatherData   map[string]any `json:"previous_weather_data"`
	RecordID              uint           `json:"record_id"`
	ForceUpdate           bool           `json:"force_update"`
}

func (h *AdviceHandler) GetAdvice(c *gin.Context) {
	ctx := c.Request.Context()

	var req adviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result := h.service.GetAdvice(ctx, models.AdviceRequest{
		Current:     req.WeatherData,
		LastUpdate:  req.LastUpdateWeatherData,
		Previous:    req.PreviousWeatherData,
		RecordID:    req.RecordID,
		ForceUpdate: req.ForceUpdate,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"advice":      result.Advice,
		"need_update": result.NeedUpdate,
	})
}

type checkRequest struct {
	WeatherData         map[string]any `json:"weather_data"`
	PreviousWeatherData map[string]any `json:"previous_weather_data"`
}

// CheckNeedUpdate runs the rule-based staleness check only; no model call,
// no persistence. Cheap preflight for callers polling on a timer.
func (h *AdviceHandler) CheckNeedUpdate(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"need_update": service.NeedsUpdate(req.WeatherData, req.PreviousWeatherData),
	})
}
