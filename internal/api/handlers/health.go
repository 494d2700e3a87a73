package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck returns server health status
func HealthCheck(counter interface{ Count() int }) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  "gizmoball-api",
			"version":  version,
			"uptime":   time.Since(startTime).String(),
			"sessions": counter.Count(),
		})
	}
}
