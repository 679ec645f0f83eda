package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/carecircle/carecircle-api/internal/models"
)

var now = time.Date(2025, 3, 4, 12, 0, 0, 0, time.Local)

func ms(t time.Time) *int64 {
	v := t.UnixMilli()
	return &v
}

func strp(s string) *string { return &s }

func TestDerive(t *testing.T) {
	past := ms(now.Add(-time.Hour))
	future := ms(now.Add(time.Hour))

	tests := []struct {
		name string
		task models.Task
		want State
	}{
		{"empty task is normal", models.Task{}, StateNormal},
		{"future due is normal", models.Task{Due: future}, StateNormal},
		{"past due is overdue", models.Task{Due: past}, StateOverdue},
		{"ack required unacked", models.Task{AckRequired: true}, StateAwaitingAck},
		{"acked is normal", models.Task{AckRequired: true, AckAt: past}, StateNormal},
		{"enforced beats overdue", models.Task{Due: past, EnforcedAt: past}, StateEnforced},
		{"hold masks overdue", models.Task{Due: past, HoldUntil: future}, StateHeld},
		{"expired hold is overdue again", models.Task{Due: past, HoldUntil: past}, StateOverdue},
		{"parent pause masks enforced", models.Task{EnforcedAt: past, PausedByParent: true}, StateHeld},
		{"completed beats everything", models.Task{
			Completed:   true,
			Due:         past,
			EnforcedAt:  past,
			AckRequired: true,
			HoldUntil:   future,
		}, StateCompleted},
		{"cancelled beats completed", models.Task{Completed: true, CancelledAt: past}, StateCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.task, now))
		})
	}
}

func TestHoldMasksOverdueUntilExpiry(t *testing.T) {
	// Regression: a task with holdUntil in the future and due in the past
	// must report held, never overdue.
	task := models.Task{
		Due:       ms(now.Add(-16 * time.Minute)),
		HoldUntil: ms(now.Add(30 * time.Minute)),
	}
	assert.Equal(t, StateHeld, Derive(task, now))
	assert.Equal(t, StateOverdue, Derive(task, now.Add(31*time.Minute)))
}

func TestCompletedSuppressesAllOtherStates(t *testing.T) {
	task := models.Task{
		Completed:   true,
		Due:         ms(now.Add(-24 * time.Hour)),
		EnforcedAt:  ms(now.Add(-time.Hour)),
		AckRequired: true,
		AckBy:       strp("owner"),
	}
	for _, at := range []time.Time{now, now.Add(100 * time.Hour)} {
		assert.Equal(t, StateCompleted, Derive(task, at))
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, StateCancelled.Terminal())
	assert.True(t, StateCompleted.Terminal())
	assert.False(t, StateHeld.Terminal())
	assert.False(t, StateOverdue.Terminal())
	assert.False(t, StateNormal.Terminal())
}
