package httpHandler

import (
	"errors"
	"net/http"

	"agro-collector/usecases"

	"github.com/gin-gonic/gin"
)

type SensorHandler struct {
	useCase *usecases.SensorUseCase
}

func NewSensorHandler(useCase *usecases.SensorUseCase) *SensorHandler {
	return &SensorHandler{
		useCase: useCase,
	}
}

// GetAllSensors handles GET /api/v1/sensors?zone_id=
func (h *SensorHandler) GetAllSensors(c *gin.Context) {
	sensors, err := h.useCase.ListSensors(c.Request.Context(), c.Query("zone_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve sensors",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  newSensorResponses(sensors),
		"count": len(sensors),
	})
}

// GetSensor handles GET /api/v1/sensors/:id
func (h *SensorHandler) GetSensor(c *gin.Context) {
	sensor, err := h.useCase.GetSensor(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, usecases.ErrSensorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sensor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": newSensorResponse(*sensor),
	})
}

// UpdateSettings handles PUT /api/v1/sensors/:id/settings
func (h *SensorHandler) UpdateSettings(c *gin.Context) {
	var settings usecases.SensorSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	sensor, err := h.useCase.UpdateSettings(c.Request.Context(), c.Param("id"), settings)
	if err != nil {
		switch {
		case errors.Is(err, usecases.ErrInvalidSettings):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, usecases.ErrSensorNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Sensor not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sensor settings updated successfully",
		"data":    newSensorResponse(*sensor),
	})
}
