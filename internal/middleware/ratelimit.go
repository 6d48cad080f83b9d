package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"community-bot-backend/internal/ratelimit"
)

// RequestLimit enforces shared fixed-window request limits on the noisy
// routes. It sits on top of the per-operation cooldown gate, which stays
// in-process; this layer only matters when several instances share Redis.
// Fails open: a Redis error must not take user commands down with it.
func RequestLimit(window *ratelimit.RedisWindow, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		var limit int
		switch {
		case strings.HasSuffix(path, "/gacha"):
			limit = 30
		case strings.HasSuffix(path, "/daily"):
			limit = 10
		default:
			c.Next()
			return
		}

		allowed, err := window.Allow(c.Request.Context(), userID, path, limit, time.Minute)
		if err != nil {
			logger.Warn("request limit check failed", zap.String("user", userID), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":               "rate limited",
				"retry_after_seconds": 60,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
