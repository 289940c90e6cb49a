package handler

import (
	"modflow/backend/internal/livefeed"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict to the dashboard origin once it has a fixed host.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeLiveFeed upgrades an authorized reviewer to the live decision stream.
func (h *Handler) ServeLiveFeed(c *gin.Context) {
	if h.Hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live feed is not enabled"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := livefeed.NewWebSocketClient(actorFrom(c).ID, conn, h.Hub)
	if !h.Hub.Register(client) {
		conn.Close()
		return
	}
	client.Run()
}
