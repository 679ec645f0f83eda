// Package lifecycle derives a task's display/enforcement state from its
// snapshot and the current time. Every surface that needs a state calls
// Derive; nothing re-derives inline.
package lifecycle

import (
	"time"

	"github.com/carecircle/carecircle-api/internal/models"
)

// State is the single derived display state of a task.
type State string

const (
	StateCancelled   State = "cancelled"
	StateCompleted   State = "completed"
	StateHeld        State = "held"
	StateEnforced    State = "enforced"
	StateOverdue     State = "overdue"
	StateAwaitingAck State = "awaiting_ack"
	StateNormal      State = "normal"
)

// Derive maps a task snapshot plus the current time to exactly one state.
// Priority: Cancelled > Completed > Held > Enforced > Overdue >
// Awaiting Ack > Normal. A paused task never shows as overdue even when
// its due time has passed; the pause is an explicit operator override.
func Derive(t models.Task, now time.Time) State {
	nowMs := now.UnixMilli()

	switch {
	case t.Cancelled():
		return StateCancelled
	case t.Completed:
		return StateCompleted
	case t.HeldAt(nowMs):
		return StateHeld
	case t.EnforcedAt != nil:
		return StateEnforced
	case t.Due != nil && *t.Due < nowMs:
		return StateOverdue
	case t.AckRequired && t.AckAt == nil:
		return StateAwaitingAck
	default:
		return StateNormal
	}
}

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateCancelled || s == StateCompleted
}
