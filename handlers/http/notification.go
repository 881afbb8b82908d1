package httpHandler

import (
	"errors"
	"net/http"
	"strconv"

	"agro-collector/usecases"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	useCase *usecases.NotificationUseCase
}

func NewNotificationHandler(uc *usecases.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{useCase: uc}
}

// GET /api/v1/users/:user_id/notifications?unread=true&limit=50
func (h *NotificationHandler) GetUserNotifications(c *gin.Context) {
	unread, _ := strconv.ParseBool(c.Query("unread"))
	// optional limit
	limit := 0
	if l := c.Query("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = v
	}

	notifications, err := h.useCase.ListForUser(c.Request.Context(), c.Param("user_id"), unread, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": notifications, "count": len(notifications)})
}

// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.useCase.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, usecases.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

// PUT /api/v1/users/:user_id/notifications/read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.useCase.MarkAllRead(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read", "updated": n})
}
