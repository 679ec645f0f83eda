package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carecircle/carecircle-api/internal/clock"
	"github.com/carecircle/carecircle-api/internal/dto"
	apierrors "github.com/carecircle/carecircle-api/internal/errors"
	"github.com/carecircle/carecircle-api/internal/middleware"
	"github.com/carecircle/carecircle-api/internal/models"
	"github.com/carecircle/carecircle-api/internal/recurrence"
	"github.com/carecircle/carecircle-api/internal/store"
)

type TaskHandler struct {
	store *store.TaskStore
	clock clock.Clock
}

func NewTaskHandler(s *store.TaskStore, clk clock.Clock) *TaskHandler {
	return &TaskHandler{store: s, clock: clk}
}

// respondStoreError maps store sentinel errors to HTTP responses.
func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, store.ErrTitleRequired),
		errors.Is(err, store.ErrInvalidAutoAction),
		errors.Is(err, store.ErrHoldMinutes),
		errors.Is(err, recurrence.ErrWeeklyNeedsDays),
		errors.Is(err, recurrence.ErrInvalidDayOfWeek),
		errors.Is(err, recurrence.ErrInvalidKind):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, store.ErrNotCompleted),
		errors.Is(err, store.ErrAlreadyCompleted):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}

// ListTasks returns active tasks, each with its derived state.
// Filters: ?assigned_to=<id>, ?include_cancelled=1.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	filter := store.ListFilter{
		IncludeCancelled: c.Query("include_cancelled") == "1",
	}
	if assignee := c.Query("assigned_to"); assignee != "" {
		filter.AssignedTo = &assignee
	}

	tasks, err := h.store.List(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskResponses(tasks, h.clock.Now()),
	})
}

// GetTask returns a single task by id.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.store.Get(c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(*task, h.clock.Now()))
}

// CreateTask creates a new task.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		Title       string           `json:"title" binding:"required"`
		Note        string           `json:"note"`
		AssignedTo  *string          `json:"assignedTo"`
		ForMinor    bool             `json:"forMinor"`
		Due         *int64           `json:"due"`
		AckRequired bool             `json:"ackRequired"`
		PhotoProof  bool             `json:"photoProof"`
		Repeat      recurrence.Kind  `json:"repeat"`
		RepeatRule  *recurrence.Rule `json:"repeatRule"`
		AutoEnforce bool             `json:"autoEnforce"`
		AutoAction  string           `json:"autoAction"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.store.Create(store.CreateTaskInput{
		Title:       req.Title,
		Note:        req.Note,
		AssignedTo:  req.AssignedTo,
		ForMinor:    req.ForMinor,
		Due:         req.Due,
		AckRequired: req.AckRequired,
		PhotoProof:  req.PhotoProof,
		Repeat:      req.Repeat,
		RepeatRule:  req.RepeatRule,
		AutoEnforce: req.AutoEnforce,
		AutoAction:  models.AutoAction(req.AutoAction),
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskResponse(*task, h.clock.Now()))
}

// UpdateTask applies a partial update. The raw body is parsed as a map so
// "field: null" and "field absent" stay distinguishable. Lifecycle fields
// and the creation-time policy flags are rejected here.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	for _, field := range []string{
		"ackRequired", "photoProof", "ackBy", "ackAt",
		"enforcedAt", "holdUntil", "cancelledAt",
	} {
		if _, ok := rawReq[field]; ok {
			apierrors.BadRequest(c, field+" cannot be changed through this endpoint")
			return
		}
	}

	var patch store.TaskPatch

	if title, ok := rawReq["title"]; ok {
		titleStr, ok := title.(string)
		if !ok {
			apierrors.BadRequest(c, "title must be a string")
			return
		}
		patch.Title = &titleStr
	}
	if note, ok := rawReq["note"]; ok {
		noteStr, ok := note.(string)
		if !ok {
			apierrors.BadRequest(c, "note must be a string")
			return
		}
		patch.Note = &noteStr
	}
	if raw, ok := rawReq["assignedTo"]; ok {
		patch.AssignedToSet = true
		if raw != nil {
			assignee, ok := raw.(string)
			if !ok {
				apierrors.BadRequest(c, "assignedTo must be a string or null")
				return
			}
			patch.AssignedTo = &assignee
		}
	}
	if raw, ok := rawReq["due"]; ok {
		patch.DueSet = true
		if raw != nil {
			dueFloat, ok := raw.(float64)
			if !ok {
				apierrors.BadRequest(c, "due must be epoch milliseconds or null")
				return
			}
			due := int64(dueFloat)
			patch.Due = &due
		}
	}
	if raw, ok := rawReq["completed"]; ok {
		completed, ok := raw.(bool)
		if !ok {
			apierrors.BadRequest(c, "completed must be a boolean")
			return
		}
		patch.Completed = &completed
	}
	if raw, ok := rawReq["repeat"]; ok {
		repeatStr, ok := raw.(string)
		if !ok {
			apierrors.BadRequest(c, "repeat must be a string")
			return
		}
		kind := recurrence.Kind(repeatStr)
		patch.Repeat = &kind
	}
	if raw, ok := rawReq["repeatRule"]; ok {
		patch.RepeatRuleSet = true
		if raw != nil {
			rule, err := decodeRule(raw)
			if err != nil {
				apierrors.BadRequest(c, "Invalid repeatRule")
				return
			}
			patch.RepeatRule = rule
		}
	}
	if raw, ok := rawReq["autoEnforce"]; ok {
		autoEnforce, ok := raw.(bool)
		if !ok {
			apierrors.BadRequest(c, "autoEnforce must be a boolean")
			return
		}
		patch.AutoEnforce = &autoEnforce
	}
	if raw, ok := rawReq["autoAction"]; ok {
		actionStr, ok := raw.(string)
		if !ok {
			apierrors.BadRequest(c, "autoAction must be a string")
			return
		}
		action := models.AutoAction(actionStr)
		patch.AutoAction = &action
	}
	if raw, ok := rawReq["pausedByParent"]; ok {
		paused, ok := raw.(bool)
		if !ok {
			apierrors.BadRequest(c, "pausedByParent must be a boolean")
			return
		}
		patch.PausedByParent = &paused
	}

	task, err := h.store.Patch(c.Param("id"), patch)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(*task, h.clock.Now()))
}

// decodeRule rebuilds a recurrence rule from the raw patch map.
func decodeRule(raw any) (*recurrence.Rule, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New("repeatRule must be an object")
	}
	rule := &recurrence.Rule{}
	if kind, ok := obj["kind"].(string); ok {
		rule.Kind = recurrence.Kind(kind)
	}
	if timeStr, ok := obj["timeHHMM"].(string); ok {
		rule.TimeHHMM = timeStr
	}
	if days, ok := obj["daysOfWeek"].([]any); ok {
		for _, d := range days {
			f, ok := d.(float64)
			if !ok {
				return nil, errors.New("daysOfWeek must be numbers")
			}
			rule.DaysOfWeek = append(rule.DaysOfWeek, int(f))
		}
	}
	if offsets, ok := obj["alertOffsetsMin"].([]any); ok {
		for _, o := range offsets {
			f, ok := o.(float64)
			if !ok {
				return nil, errors.New("alertOffsetsMin must be numbers")
			}
			rule.AlertOffsetsMin = append(rule.AlertOffsetsMin, int(f))
		}
	}
	return rule, nil
}

// DeleteTask permanently removes a completed task. Deleting a missing id
// reports deleted:false rather than 404 so retries are safe.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	deleted, err := h.store.Delete(c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": deleted})
}

// AckTask acknowledges a task as the acting user.
func (h *TaskHandler) AckTask(c *gin.Context) {
	task, err := h.store.Ack(c.Param("id"), middleware.ActorID(c))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(*task, h.clock.Now()))
}

// HoldTask suspends the task for the requested number of minutes.
func (h *TaskHandler) HoldTask(c *gin.Context) {
	type HoldRequest struct {
		Minutes int `json:"minutes" binding:"required"`
	}
	var req HoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "minutes is required")
		return
	}

	task, err := h.store.Hold(c.Param("id"), req.Minutes)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(*task, h.clock.Now()))
}

// ResumeTask clears any suspension window.
func (h *TaskHandler) ResumeTask(c *gin.Context) {
	task, err := h.store.Resume(c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(*task, h.clock.Now()))
}

// EnforceTask records that the consequence action was applied. The channel
// is optional and defaults inside the store.
func (h *TaskHandler) EnforceTask(c *gin.Context) {
	type EnforceRequest struct {
		Channel string `json:"channel"`
	}
	var req EnforceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}

	task, err := h.store.Enforce(c.Param("id"), req.Channel)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(*task, h.clock.Now()))
}

// ClearEnforcement ends the enforcement episode.
func (h *TaskHandler) ClearEnforcement(c *gin.Context) {
	task, err := h.store.ClearEnforcement(c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(*task, h.clock.Now()))
}

// CancelTask retires an active task without deleting its record.
func (h *TaskHandler) CancelTask(c *gin.Context) {
	task, err := h.store.Cancel(c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(*task, h.clock.Now()))
}

// AttachProof stores the storage key of an uploaded completion photo.
func (h *TaskHandler) AttachProof(c *gin.Context) {
	type ProofRequest struct {
		Key string `json:"key" binding:"required"`
	}
	var req ProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "key is required")
		return
	}
	key := strings.TrimSpace(req.Key)
	if key == "" {
		apierrors.BadRequest(c, "key is required")
		return
	}

	task, err := h.store.AttachProof(c.Param("id"), key)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(*task, h.clock.Now()))
}
