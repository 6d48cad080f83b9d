package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"community-bot-backend/internal/engine"
)

// respondError maps the engine's typed failures onto HTTP responses. Only
// operation-level failures reach callers; anything else is an opaque 500
// with the detail kept in the log.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		rateLimited    *engine.RateLimitedError
		alreadyClaimed *engine.AlreadyClaimedError
		insufficient   *engine.InsufficientFundsError
		invalid        *engine.InvalidInputError
	)

	switch {
	case errors.As(err, &rateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":               "rate limited",
			"retry_after_seconds": rateLimited.RetryAfter.Seconds(),
		})
	case errors.As(err, &alreadyClaimed):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":               "daily reward already claimed",
			"retry_after_seconds": alreadyClaimed.RetryAfter.Seconds(),
		})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "insufficient funds",
			"required":  insufficient.Required,
			"available": insufficient.Available,
		})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Reason})
	default:
		logger.Error("operation failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
