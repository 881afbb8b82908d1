package httpHandler

import (
	"errors"
	"net/http"

	"agro-collector/weather"

	"github.com/gin-gonic/gin"
)

type WeatherHandler struct {
	client *weather.Client
}

func NewWeatherHandler(client *weather.Client) *WeatherHandler {
	return &WeatherHandler{client: client}
}

// GetCurrentWeather handles GET /api/v1/weather?lat=..&lon=..
func (h *WeatherHandler) GetCurrentWeather(c *gin.Context) {
	if !h.client.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": weather.ErrWeatherNotConfigured.Error()})
		return
	}

	lat, lon, err := weather.ParseCoordinates(c.Query("lat"), c.Query("lon"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conditions, err := h.client.Current(c.Request.Context(), lat, lon)
	if err != nil {
		switch {
		case errors.Is(err, weather.ErrWeatherNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		case errors.Is(err, weather.ErrUpstream):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": conditions})
}
