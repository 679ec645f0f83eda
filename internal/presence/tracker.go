// Package presence tracks device heartbeats. Presence is an ephemeral
// signal, not a record: it is kept in process memory and lost on restart.
package presence

import (
	"sync"
	"time"

	"github.com/carecircle/carecircle-api/internal/clock"
)

// DefaultOnlineWindow is how long after the last heartbeat a device still
// counts as online.
const DefaultOnlineWindow = 45 * time.Second

// Status is the GET /api/device/presence response body.
type Status struct {
	UserID     string `json:"userId"`
	Online     bool   `json:"online"`
	LastSeenAt *int64 `json:"lastSeenAt"`
	Now        int64  `json:"now"`
}

type Tracker struct {
	mu       sync.RWMutex
	lastSeen map[string]int64
	clock    clock.Clock
	window   time.Duration
}

func NewTracker(clk clock.Clock, window time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultOnlineWindow
	}
	return &Tracker{
		lastSeen: make(map[string]int64),
		clock:    clk,
		window:   window,
	}
}

// Heartbeat records that the user's device checked in just now.
func (t *Tracker) Heartbeat(userID string) {
	now := t.clock.Now().UnixMilli()
	t.mu.Lock()
	t.lastSeen[userID] = now
	t.mu.Unlock()
}

// Status reports whether the user's device is inside the online window.
// Users that never checked in report offline with a nil lastSeenAt.
func (t *Tracker) Status(userID string) Status {
	now := t.clock.Now().UnixMilli()

	t.mu.RLock()
	seen, ok := t.lastSeen[userID]
	t.mu.RUnlock()

	st := Status{UserID: userID, Now: now}
	if !ok {
		return st
	}
	st.LastSeenAt = &seen
	st.Online = now-seen <= t.window.Milliseconds()
	return st
}
