package middleware

import (
	"errors"
	"net/http"
	"strings"

	"presence-service/internal/auth"

	"github.com/gin-gonic/gin"
)

// WSAuth is the connection gate: it runs the token verifier against the
// handshake's `token` query parameter before the WebSocket upgrade. No
// event handling code runs for a connection that fails here, and the
// transport connection is never established.
func WSAuth(verifier *auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Browsers cannot set headers on WebSocket requests, so the
		// credential travels as a query parameter
		tokenString := c.Query("token")

		// Remove "Bearer " prefix if present
		tokenString = strings.Replace(tokenString, "Bearer ", "", 1)

		userID, err := verifier.Verify(tokenString)
		if err != nil {
			reason := "Invalid token"
			if errors.Is(err, auth.ErrNoToken) {
				reason = "No token"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": reason})
			return
		}

		// Attach the resolved identity for the connection's lifetime
		c.Set("user_id", userID)
		c.Next()
	}
}
