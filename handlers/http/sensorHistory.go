package httpHandler

import (
	"errors"
	"net/http"

	"agro-collector/history"
	"agro-collector/usecases"

	"github.com/gin-gonic/gin"
)

// GetSensorHistory handles GET /api/v1/sensors/:id/history?start=-24h
func (h *SensorHandler) GetSensorHistory(c *gin.Context) {
	id := c.Param("id")
	points, err := h.useCase.History(c.Request.Context(), id, c.Query("start"))
	if err != nil {
		switch {
		case errors.Is(err, history.ErrHistoryDisabled):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		case errors.Is(err, history.ErrInvalidStart):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, usecases.ErrSensorNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Sensor not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sensor history"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sensor_id": id,
		"data":      points,
		"count":     len(points),
	})
}
