package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/carecircle/carecircle-api/internal/errors"
	"github.com/carecircle/carecircle-api/internal/middleware"
	"github.com/carecircle/carecircle-api/internal/presence"
)

type PresenceHandler struct {
	tracker *presence.Tracker
}

func NewPresenceHandler(tr *presence.Tracker) *PresenceHandler {
	return &PresenceHandler{tracker: tr}
}

// Heartbeat records a device check-in. The body may name a userId; when
// absent the acting user from the identity header is assumed.
func (h *PresenceHandler) Heartbeat(c *gin.Context) {
	type HeartbeatRequest struct {
		UserID string `json:"userId"`
	}
	var req HeartbeatRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}
	userID := req.UserID
	if userID == "" {
		userID = middleware.ActorID(c)
	}

	h.tracker.Heartbeat(userID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetPresence reports whether a user's device is inside the online window.
func (h *PresenceHandler) GetPresence(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		apierrors.BadRequest(c, "userId is required")
		return
	}
	c.JSON(http.StatusOK, h.tracker.Status(userID))
}
