// Package store holds the authoritative task and user collections for one
// process lifetime. The backing database is in-process SQLite, volatile by
// default; instances are constructed with an injected handle so tests can
// run isolated stores.
package store

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carecircle/carecircle-api/internal/clock"
	"github.com/carecircle/carecircle-api/internal/models"
	"github.com/carecircle/carecircle-api/internal/recurrence"
)

var (
	ErrNotFound          = errors.New("task not found")
	ErrTitleRequired     = errors.New("title is required")
	ErrInvalidAutoAction = errors.New("unknown auto action")
	ErrHoldMinutes       = errors.New("hold minutes must be positive")
	ErrNotCompleted      = errors.New("only completed tasks can be deleted")
	ErrAlreadyCompleted  = errors.New("task is already completed")
)

// DefaultEnforceChannel is used when an enforce request names no channel.
const DefaultEnforceChannel = "ws"

type TaskStore struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewTaskStore(db *gorm.DB, clk clock.Clock) *TaskStore {
	return &TaskStore{db: db, clock: clk}
}

// CreateTaskInput carries the caller-supplied fields for a new task.
type CreateTaskInput struct {
	Title       string
	Note        string
	AssignedTo  *string
	ForMinor    bool
	Due         *int64
	AckRequired bool
	PhotoProof  bool
	Repeat      recurrence.Kind
	RepeatRule  *recurrence.Rule
	AutoEnforce bool
	AutoAction  models.AutoAction
}

// Create validates the input, assigns an id, and inserts the record. For
// daily/weekly tasks without an explicit due, the first due instant is
// computed from the recurrence rule.
func (s *TaskStore) Create(in CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	repeat := in.Repeat
	if repeat == "" {
		repeat = recurrence.KindNone
	}
	rule := in.RepeatRule
	if rule == nil && repeat != recurrence.KindNone {
		rule = &recurrence.Rule{Kind: repeat}
	}
	if rule != nil {
		rule.Kind = repeat
		if err := rule.Validate(); err != nil {
			return nil, err
		}
	}

	action := in.AutoAction
	if action != "" && !action.Valid() {
		return nil, ErrInvalidAutoAction
	}
	if in.AutoEnforce && action == "" {
		action = models.ActionScreenLock
	}

	due := in.Due
	if due == nil && repeat != recurrence.KindNone {
		next, err := recurrence.NextOccurrence(*rule, s.clock.Now())
		if err != nil {
			return nil, err
		}
		ms := next.UnixMilli()
		due = &ms
	}

	task := models.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Note:        in.Note,
		AssignedTo:  in.AssignedTo,
		ForMinor:    in.ForMinor,
		Due:         due,
		AckRequired: in.AckRequired,
		PhotoProof:  in.PhotoProof,
		Repeat:      repeat,
		RepeatRule:  rule,
		AutoEnforce: in.AutoEnforce,
		AutoAction:  action,
	}
	if err := s.db.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListFilter narrows List results. Cancelled tasks are excluded unless
// explicitly requested.
type ListFilter struct {
	AssignedTo       *string
	IncludeCancelled bool
}

// List returns the collection, newest first. Display ordering (assignee
// group, then due, then title) is a caller concern.
func (s *TaskStore) List(f ListFilter) ([]models.Task, error) {
	query := s.db.Model(&models.Task{})
	if !f.IncludeCancelled {
		query = query.Where("cancelled_at IS NULL")
	}
	if f.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *f.AssignedTo)
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Get finds one task by id.
func (s *TaskStore) Get(id string) (*models.Task, error) {
	var task models.Task
	if err := s.db.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// TaskPatch is a partial update. Pointer fields are applied when non-nil;
// the *Set flags distinguish "clear to null" from "not provided".
type TaskPatch struct {
	Title *string
	Note  *string

	AssignedTo    *string
	AssignedToSet bool

	Due    *int64
	DueSet bool

	Completed *bool

	Repeat        *recurrence.Kind
	RepeatRule    *recurrence.Rule
	RepeatRuleSet bool

	AutoEnforce    *bool
	AutoAction     *models.AutoAction
	PausedByParent *bool
}

// Patch applies a partial update to mutable fields. Lifecycle fields
// (ack, enforcement, hold) move only through their dedicated actions.
func (s *TaskStore) Patch(id string, p TaskPatch) (*models.Task, error) {
	task, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = title
	}
	if p.Note != nil {
		task.Note = *p.Note
	}
	if p.AssignedToSet {
		task.AssignedTo = p.AssignedTo
	}
	if p.DueSet {
		task.Due = p.Due
	}
	if p.Completed != nil {
		task.Completed = *p.Completed
	}
	if p.Repeat != nil {
		task.Repeat = *p.Repeat
	}
	if p.RepeatRuleSet {
		task.RepeatRule = p.RepeatRule
	}
	if task.Repeat != recurrence.KindNone {
		if task.RepeatRule == nil {
			task.RepeatRule = &recurrence.Rule{Kind: task.Repeat}
		}
		task.RepeatRule.Kind = task.Repeat
		if err := task.RepeatRule.Validate(); err != nil {
			return nil, err
		}
	}
	if p.AutoEnforce != nil {
		task.AutoEnforce = *p.AutoEnforce
	}
	if p.AutoAction != nil {
		if !p.AutoAction.Valid() {
			return nil, ErrInvalidAutoAction
		}
		task.AutoAction = *p.AutoAction
	}
	if p.PausedByParent != nil {
		task.PausedByParent = *p.PausedByParent
	}

	if err := s.db.Save(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// Ack records the acting user and time. Re-ack overwrites; there is no
// un-ack.
func (s *TaskStore) Ack(id, actor string) (*models.Task, error) {
	task, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UnixMilli()
	task.AckBy = &actor
	task.AckAt = &now
	if err := s.db.Save(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// Hold suspends overdue/enforcement consideration for the given number of
// minutes.
func (s *TaskStore) Hold(id string, minutes int) (*models.Task, error) {
	if minutes <= 0 {
		return nil, ErrHoldMinutes
	}
	task, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	until := s.clock.Now().UnixMilli() + int64(minutes)*60_000
	task.HoldUntil = &until
	if err := s.db.Save(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// Resume clears any suspension window.
func (s *TaskStore) Resume(id string) (*models.Task, error) {
	task, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	task.HoldUntil = nil
	task.PausedByParent = false
	if err := s.db.Save(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// Enforce records that the consequence action ran. The overdue
// precondition is advisory: an operator may enforce early as an override.
func (s *TaskStore) Enforce(id, channel string) (*models.Task, error) {
	task, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if channel == "" {
		channel = DefaultEnforceChannel
	}
	now := s.clock.Now().UnixMilli()
	task.EnforcedAt = &now
	task.EnforceChannel = &channel
	task.LastEnforceError = nil
	if err := s.db.Save(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// ClearEnforcement ends the enforcement episode. Clearing a task that was
// never enforced is a no-op.
func (s *TaskStore) ClearEnforcement(id string) (*models.Task, error) {
	task, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	task.EnforcedAt = nil
	task.EnforceChannel = nil
	task.LastEnforceError = nil
	if err := s.db.Save(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// RecordEnforceError notes a failed enforcement attempt without changing
// the rest of the episode.
func (s *TaskStore) RecordEnforceError(id, msg string) error {
	task, err := s.Get(id)
	if err != nil {
		return err
	}
	task.LastEnforceError = &msg
	return s.db.Save(task).Error
}

// AttachProof records the storage key of an uploaded completion photo.
// Re-upload overwrites.
func (s *TaskStore) AttachProof(id, key string) (*models.Task, error) {
	task, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	task.ProofKey = &key
	if err := s.db.Save(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// Cancel removes the task from active consideration without deleting the
// record. Completed tasks cannot be cancelled; cancelling twice is a
// no-op.
func (s *TaskStore) Cancel(id string) (*models.Task, error) {
	task, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if task.Completed {
		return nil, ErrAlreadyCompleted
	}
	if task.CancelledAt == nil {
		now := s.clock.Now().UnixMilli()
		task.CancelledAt = &now
		if err := s.db.Save(task).Error; err != nil {
			return nil, err
		}
	}
	return task, nil
}

// Delete permanently removes a completed task. The bool reports whether a
// record was actually removed; a missing id is not an error. Active tasks
// must be cancelled instead.
func (s *TaskStore) Delete(id string) (bool, error) {
	task, err := s.Get(id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !task.Completed {
		return false, ErrNotCompleted
	}
	if err := s.db.Delete(&models.Task{}, "id = ?", id).Error; err != nil {
		return false, err
	}
	return true, nil
}
