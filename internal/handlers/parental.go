package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apierrors "github.com/carecircle/carecircle-api/internal/errors"
	"github.com/carecircle/carecircle-api/internal/middleware"
	"github.com/carecircle/carecircle-api/internal/models"
)

// ParentalHandler accepts direct device-control commands. Delivery to the
// device agent is not wired up yet; the endpoint validates and acknowledges
// so clients can ship against the final shape.
type ParentalHandler struct {
	log *logrus.Logger
}

func NewParentalHandler(log *logrus.Logger) *ParentalHandler {
	return &ParentalHandler{log: log}
}

// Enforce accepts an ad-hoc device action against a user, independent of
// any task.
func (h *ParentalHandler) Enforce(c *gin.Context) {
	type EnforceRequest struct {
		TargetUserID string `json:"targetUserId" binding:"required"`
		Action       string `json:"action" binding:"required"`
		Reason       string `json:"reason"`
	}

	var req EnforceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "targetUserId and action are required")
		return
	}
	if !models.AutoAction(req.Action).Valid() {
		apierrors.BadRequest(c, "unknown action")
		return
	}

	h.log.WithFields(logrus.Fields{
		"actor":  middleware.ActorID(c),
		"target": req.TargetUserID,
		"action": req.Action,
		"reason": req.Reason,
	}).Info("parental enforce requested")

	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"received": gin.H{
			"targetUserId": req.TargetUserID,
			"action":       req.Action,
			"reason":       req.Reason,
		},
	})
}
