package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxUserIDLen = 64

// Identity extracts the opaque caller-supplied user id from the X-User-ID
// header. There is deliberately no authentication here; upstream chat
// platforms already own identity.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-User-ID"))
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "X-User-ID header required"})
			c.Abort()
			return
		}
		if len(id) > maxUserIDLen {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user id too long"})
			c.Abort()
			return
		}

		c.Set("user_id", id)
		c.Next()
	}
}
