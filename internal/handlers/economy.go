package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"community-bot-backend/internal/engine"
	"community-bot-backend/internal/models"
)

type EconomyHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

func NewEconomyHandler(eng *engine.Engine, logger *zap.Logger) *EconomyHandler {
	return &EconomyHandler{engine: eng, logger: logger}
}

func (h *EconomyHandler) ClaimDaily(c *gin.Context) {
	userID := c.GetString("user_id")

	result, err := h.engine.ClaimDaily(userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "daily": result})
}

func (h *EconomyHandler) DrawGacha(c *gin.Context) {
	userID := c.GetString("user_id")

	result, err := h.engine.DrawGacha(userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "draw": result})
}

func (h *EconomyHandler) Leaderboard(c *gin.Context) {
	userID := c.GetString("user_id")
	metric := models.ParseMetric(c.Query("metric"))

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	entries, err := h.engine.Leaderboard(userID, metric, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metric": metric, "entries": entries})
}
