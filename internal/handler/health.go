package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports liveness. The service holds no state, so alive means ready.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
