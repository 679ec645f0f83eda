package models

import (
	"time"

	"github.com/carecircle/carecircle-api/internal/recurrence"
)

// AutoAction is the consequence triggered when an overdue task is enforced.
type AutoAction string

const (
	ActionPlayLoudAlert  AutoAction = "play_loud_alert"
	ActionScreenLock     AutoAction = "screen_lock"
	ActionNetworkPause   AutoAction = "network_pause"
	ActionDeviceRestart  AutoAction = "device_restart"
	ActionDeviceShutdown AutoAction = "device_shutdown"
	ActionAppRestart     AutoAction = "app_restart"
)

func (a AutoAction) Valid() bool {
	switch a {
	case ActionPlayLoudAlert, ActionScreenLock, ActionNetworkPause,
		ActionDeviceRestart, ActionDeviceShutdown, ActionAppRestart:
		return true
	}
	return false
}

// Task is the only entity with real structure. All instant fields are
// epoch milliseconds to match the wire format the admin clients expect.
type Task struct {
	ID         string  `gorm:"primarykey;type:varchar(36)" json:"id"`
	Title      string  `gorm:"not null" json:"title"`
	Note       string  `gorm:"type:text" json:"note,omitempty"`
	AssignedTo *string `gorm:"type:varchar(36);index" json:"assignedTo,omitempty"`
	ForMinor   bool    `json:"forMinor"`

	Due       *int64 `gorm:"index" json:"due,omitempty"`
	Completed bool   `json:"completed"`

	// Policy flags, set at creation and immutable thereafter.
	AckRequired bool `json:"ackRequired"`
	PhotoProof  bool `json:"photoProof"`

	// Set on acknowledgment; re-ack overwrites.
	AckBy *string `gorm:"type:varchar(36)" json:"ackBy,omitempty"`
	AckAt *int64  `json:"ackAt,omitempty"`

	ProofKey *string `json:"proofKey,omitempty"`

	Repeat     recurrence.Kind  `gorm:"type:varchar(10);not null;default:'none'" json:"repeat"`
	RepeatRule *recurrence.Rule `gorm:"serializer:json" json:"repeatRule,omitempty"`

	AutoEnforce bool       `json:"autoEnforce"`
	AutoAction  AutoAction `gorm:"type:varchar(20)" json:"autoAction,omitempty"`

	// Enforcement outcome bookkeeping. EnforcedAt is set once per episode
	// and cleared only by an explicit clear action.
	EnforcedAt       *int64  `json:"enforcedAt,omitempty"`
	EnforceChannel   *string `gorm:"type:varchar(10)" json:"enforceChannel,omitempty"`
	LastEnforceError *string `json:"lastEnforceError,omitempty"`

	// Transient suspension window. While HoldUntil is ahead of now,
	// overdue and enforcement logic are suppressed.
	HoldUntil      *int64 `json:"holdUntil,omitempty"`
	PausedByParent bool   `json:"pausedByParent"`

	CancelledAt *int64 `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Cancelled reports whether the task was removed from active consideration.
func (t Task) Cancelled() bool { return t.CancelledAt != nil }

// HeldAt reports whether the suspension window covers the given instant.
func (t Task) HeldAt(nowMillis int64) bool {
	return t.PausedByParent || (t.HoldUntil != nil && *t.HoldUntil > nowMillis)
}
