package ws

import (
	"context"
	"net/http"

	"nexusboard/internal/http/middleware"
	"nexusboard/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Handler upgrades an authenticated request. The auth middleware must have
// stored the caller under middleware.ContextUserID.
func Handler(hub *Hub, access MembershipChecker, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		userID := c.GetInt64(middleware.ContextUserID)
		if userID == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err)
			return
		}

		client := NewClient(userID, conn, hub, access)
		go client.Run(context.WithoutCancel(c.Request.Context()))
	}
}
