package handlers

import (
	"net/http"

	"skywatch/internal/models"
	"skywatch/internal/service"

	"github.com/gin-gonic/gin"
)

type WeatherHandler struct {
	service service.WeatherService
}

func NewWeatherHandler(service service.WeatherService) *WeatherHandler {
	return &WeatherHandler{service: service}
}

// Coordinates are pointers so that a missing field is distinguishable from a
// legitimate 0.0 (the equator exists).
type weatherRequest struct {
	Lat    *float64 `json:"lat" binding:"required"`
	Lon    *float64 `json:"lon" binding:"required"`
	Source string   `json:"source"`
}

func (h *WeatherHandler) GetWeather(c *gin.Context) {
	ctx := c.Request.Context()

	var req weatherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing lat/lon parameters"})
		return
	}

	source := req.Source
	switch source {
	case "":
		source = models.SourceManual
	case models.SourceManual, models.SourceAuto:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "source must be 'manual' or 'auto'"})
		return
	}

	result, err := h.service.FetchAndStore(ctx, *req.Lat, *req.Lon, source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to fetch weather data",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"weather":         result.Payload,
		"formatted":       result.Formatted,
		"alerts":          result.Alerts,
		"record_id":       result.RecordID,
		"previous_record": result.Previous,
	})
}

// GetLatestWeather serves the newest stored observation for a coordinate,
// cache first. No upstream call is made; a location nobody has submitted
// weather for is a 404.
func (h *WeatherHandler) GetLatestWeather(c *gin.Context) {
	ctx := c.Request.Context()

	var req weatherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing lat/lon parameters"})
		return
	}

	result, err := h.service.Latest(ctx, *req.Lat, *req.Lon)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to get latest weather",
			"message": err.Error(),
		})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no observations for this location"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"weather":   result.Payload,
		"formatted": result.Formatted,
		"alerts":    result.Alerts,
		"record_id": result.RecordID,
	})
}

// GetLocationName suggests a display name for a coordinate. Lookup failures
// come back as an empty name, not an error status.
func (h *WeatherHandler) GetLocationName(c *gin.Context) {
	ctx := c.Request.Context()

	var req weatherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing lat/lon parameters"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"location_name": h.service.LocationName(ctx, *req.Lat, *req.Lon),
	})
}
