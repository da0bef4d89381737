package handlers

import (
	"net/http"

	"log/slog"

	"presence-service/internal/presence"

	"github.com/gin-gonic/gin"
)

type PresenceHandler struct {
	store    *presence.Store
	registry *presence.Registry
}

func NewPresenceHandler(store *presence.Store, registry *presence.Registry) *PresenceHandler {
	return &PresenceHandler{store: store, registry: registry}
}

// GetOnlineUsers godoc
// @Summary List currently online users
// @Description Returns the identities with an active connection
// @Tags presence
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /presence/online [get]
func (h *PresenceHandler) GetOnlineUsers(c *gin.Context) {
	users, err := h.store.OnlineUsers(c.Request.Context())
	if err != nil {
		// The live registry is authoritative when the mirror is down
		slog.Error("Failed to read presence mirror", "error", err)
		users = h.registry.OnlineUsers()
	}
	if users == nil {
		users = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"online": users})
}
