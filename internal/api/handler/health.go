package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health reports that the process is up. It does not touch the database.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC(),
		"version":   h.version,
	})
}
