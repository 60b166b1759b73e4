package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the liveness probe.
func RegisterRoutes(rg *gin.RouterGroup) {
	// GET /health
	rg.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
