package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/gizmoball/internal/auth"
)

// RequireControlToken rejects requests whose control token does not grant
// the session named by the :id path parameter. The token is read from the
// Authorization header, or from the token query parameter for WebSocket
// upgrades.
func RequireControlToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "control token required"})
			return
		}

		sid, err := auth.ParseControlToken(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid control token"})
			return
		}
		if sid != c.Param("id") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token does not control this session"})
			return
		}
		c.Next()
	}
}
