package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockroom/internal/middleware"
	"stockroom/internal/realtime"
)

// WSHandler upgrades notification stream connections. Browsers cannot set
// an Authorization header on websocket requests, so the JWT rides in the
// ?token= query parameter instead.
type WSHandler struct {
	hub    *realtime.NotificationHub
	secret []byte
}

func NewWSHandler(hub *realtime.NotificationHub, secret []byte) *WSHandler {
	return &WSHandler{hub: hub, secret: secret}
}

// @Summary      Notification stream
// @Description  WebSocket endpoint pushing notification events as JSON
// @Tags         Notifications
// @Param        token  query  string  true  "Access token"
// @Router       /ws/notifications [get]
func (h *WSHandler) Notifications(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token is required"})
		return
	}
	claims, err := middleware.ParseToken(h.secret, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := realtime.Upgrade(c.Writer, c.Request)
	if err != nil {
		log.Printf("[ws][notifications] upgrade failed user=%s: %v", claims.UserID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "websocket upgrade failed"})
		return
	}

	h.hub.Register(claims.UserID, conn)
	log.Printf("[ws][notifications] connected user=%s conns=%d", claims.UserID, h.hub.ConnCount())

	// Hold the connection open; clients only receive, but the read loop
	// answers pings and notices disconnects.
	go func() {
		defer func() {
			h.hub.Unregister(claims.UserID, conn)
			log.Printf("[ws][notifications] disconnected user=%s conns=%d", claims.UserID, h.hub.ConnCount())
		}()
		for {
			var msg map[string]any
			if err := conn.ReadJSON(&msg); err != nil {
				if err != io.EOF {
					log.Printf("[ws][notifications] read user=%s: %v", claims.UserID, err)
				}
				return
			}
		}
	}()
}
