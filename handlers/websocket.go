package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"agro-collector/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// WSHandler streams notifications to browser sessions.
type WSHandler struct {
	mgr    *ws.Manager
	logger *slog.Logger
}

func NewWSHandler(mgr *ws.Manager, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{mgr: mgr, logger: logger}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// HandleNotificationWS upgrades to websocket and keeps the connection registered until
// the client goes away. Clients only receive; anything they send is discarded.
// GET /ws/notifications?user_id=<profile_id>
func (h *WSHandler) HandleNotificationWS(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user_id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	h.mgr.Register(userID, conn)
	h.logger.Info("notification stream opened", "user_id", userID)

	done := make(chan struct{})
	defer func() {
		close(done)
		h.mgr.Unregister(userID, conn)
		h.logger.Info("notification stream closed", "user_id", userID)
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("notification stream read error", "user_id", userID, "error", err)
			}
			return
		}
	}
}

// GetConnectedUsers GET /api/v1/notifications/connected
func (h *WSHandler) GetConnectedUsers(c *gin.Context) {
	users := h.mgr.List()
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users), "connections": h.mgr.Count()})
}
