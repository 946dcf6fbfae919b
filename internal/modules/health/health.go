package health

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the liveness endpoint.
func RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
		})
	})
}
