package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carecircle/carecircle-api/internal/plan"
)

type PlanHandler struct {
	plan plan.Key
}

func NewPlanHandler(key plan.Key) *PlanHandler {
	return &PlanHandler{plan: key}
}

// GetPlan reports the active subscription tier and its child limit.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	c.JSON(http.StatusOK, plan.InfoFor(h.plan))
}
