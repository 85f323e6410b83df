package handlers

import (
	"net/http"

	"brandconnect/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last dependency check. It answers 503 when
// Mongo or any Redis client was down at that check.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	healthy := status.Mongo
	for _, up := range status.Redis {
		healthy = healthy && up
	}
	if status.CheckedAt.IsZero() {
		c.JSON(http.StatusOK, gin.H{"status": "starting", "message": "Hi, I'm Brand Connect"})
		return
	}
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": status})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": status})
}
