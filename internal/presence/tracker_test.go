package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/carecircle/carecircle-api/internal/clock"
)

func TestStatusUnknownUserIsOffline(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC))
	tr := NewTracker(clk, DefaultOnlineWindow)

	st := tr.Status("kid-1")
	assert.False(t, st.Online)
	assert.Nil(t, st.LastSeenAt)
	assert.Equal(t, "kid-1", st.UserID)
	assert.Equal(t, clk.Now().UnixMilli(), st.Now)
}

func TestHeartbeatMarksOnlineUntilWindowExpires(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC))
	tr := NewTracker(clk, DefaultOnlineWindow)

	tr.Heartbeat("kid-1")
	st := tr.Status("kid-1")
	assert.True(t, st.Online)
	assert.NotNil(t, st.LastSeenAt)

	clk.Advance(40 * time.Second)
	assert.True(t, tr.Status("kid-1").Online)

	clk.Advance(10 * time.Second)
	st = tr.Status("kid-1")
	assert.False(t, st.Online)
	assert.NotNil(t, st.LastSeenAt, "lastSeenAt survives going offline")
}

func TestHeartbeatRefreshesWindow(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC))
	tr := NewTracker(clk, DefaultOnlineWindow)

	tr.Heartbeat("kid-1")
	clk.Advance(40 * time.Second)
	tr.Heartbeat("kid-1")
	clk.Advance(40 * time.Second)
	assert.True(t, tr.Status("kid-1").Online)
}
