package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"community-bot-backend/internal/engine"
	"community-bot-backend/internal/faq"
)

type ProfileHandler struct {
	engine    *engine.Engine
	responder *faq.Responder
	logger    *zap.Logger
}

func NewProfileHandler(eng *engine.Engine, responder *faq.Responder, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{engine: eng, responder: responder, logger: logger}
}

// GetProfile shows the requester's profile, or another user's via ?user=.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	target := c.Query("user")

	profile, err := h.engine.Profile(userID, target)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *ProfileHandler) SetStatus(c *gin.Context) {
	userID := c.GetString("user_id")

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile, err := h.engine.SetStatus(userID, req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
}

// AskFAQ runs the canned-response matcher. No user state is touched.
func (h *ProfileHandler) AskFAQ(c *gin.Context) {
	q := c.Query("q")
	answer, ok := h.responder.Answer(q)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"matched": false})
		return
	}

	resp := gin.H{"matched": true, "answer": answer}
	if reaction, ok := h.responder.Reaction(); ok {
		resp["reaction"] = reaction
	}
	c.JSON(http.StatusOK, resp)
}

// Help lists the available commands, mirroring the chat bot's help output.
func (h *ProfileHandler) Help(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"commands": []gin.H{
			{"route": "POST /api/daily", "description": "Claim the daily coin and exp reward"},
			{"route": "POST /api/gacha", "description": "Spend coins on a random item draw"},
			{"route": "GET /api/profile", "description": "View your profile, or ?user= for someone else"},
			{"route": "PUT /api/profile/status", "description": "Set your relationship status"},
			{"route": "GET /api/leaderboard", "description": "Top users by money, level or online time"},
			{"route": "GET /api/faq", "description": "Ask the bot a casual question"},
			{"route": "GET /api/ws", "description": "WebSocket for presence events and live profile updates"},
		},
	})
}
