package handlers

import (
	"net/http"

	"log/slog"

	"presence-service/internal/websocket"

	"github.com/gin-gonic/gin"
)

type WSHandler struct {
	hub *websocket.Hub
}

func NewWSHandler(hub *websocket.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// HandleWebSocket godoc
// @Summary WebSocket connection
// @Description Establish a WebSocket connection for presence and typing signals
// @Tags websocket
// @Param token query string true "Bearer credential"
// @Success 101 "Switching Protocols - WebSocket connection established"
// @Failure 401 {object} map[string]interface{} "Unauthorized - No token or Invalid token"
// @Router /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	// The connection gate has already resolved the identity
	userID := c.GetString("user_id")
	if userID == "" {
		slog.Error("WebSocket handler reached without an identity")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token"})
		return
	}

	websocket.ServeWS(h.hub, c.Writer, c.Request, userID)
}
