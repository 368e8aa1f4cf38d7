package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allow(rl *RateLimiter, id domain.IdentityID) bool {
	_, ok := rl.Reserve(id)
	return ok
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	rl := NewRateLimiter(3, 10*time.Second)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	for i := range 3 {
		assert.True(t, allow(rl, "alice"), "attempt %d", i)
		clock = clock.Add(time.Second)
	}
	assert.False(t, allow(rl, "alice"))
	assert.True(t, allow(rl, "bob"), "limits are per identity")

	// only the attempt at +2s is still inside the window
	clock = clock.Add(8 * time.Second)
	assert.True(t, allow(rl, "alice"))
	assert.True(t, allow(rl, "alice"))
	assert.False(t, allow(rl, "alice"))
}

func TestRateLimiter_ReleaseReturnsSlot(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	release, ok := rl.Reserve("alice")
	require.True(t, ok)
	assert.False(t, allow(rl, "alice"))

	release()
	release()
	assert.Zero(t, rl.Len(), "an identity with no attempts is not tracked")

	assert.True(t, allow(rl, "alice"))
	assert.False(t, allow(rl, "alice"), "a double release hands back only one slot")
}

func TestRateLimiter_ForgetsExpiredIdentities(t *testing.T) {
	rl := NewRateLimiter(5, time.Second)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	for i := range 1000 {
		require.True(t, allow(rl, domain.IdentityID(fmt.Sprintf("guest-%d", i))))
	}
	require.Equal(t, 1000, rl.Len())

	clock = clock.Add(2 * time.Second)
	assert.True(t, allow(rl, "guest-0"))
	assert.Equal(t, 1000, rl.Sweep())
	assert.Equal(t, 1, rl.Len(), "only the identity with a live window is kept")

	clock = clock.Add(2 * time.Second)
	assert.Equal(t, 1, rl.Sweep())
	assert.Zero(t, rl.Len())
}

func TestRateLimiter_RunSweeps(t *testing.T) {
	rl := NewRateLimiter(5, time.Millisecond)
	for i := range 100 {
		require.True(t, allow(rl, domain.IdentityID(fmt.Sprintf("guest-%d", i))))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return rl.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		interval time.Duration
	}{
		{name: "zero limit", limit: 0, interval: time.Second},
		{name: "zero interval", limit: 5, interval: 0},
		{name: "negative", limit: -1, interval: -time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(tt.limit, tt.interval)
			assert.Nil(t, rl)
			for range 100 {
				release, ok := rl.Reserve("alice")
				assert.True(t, ok)
				assert.NotPanics(t, release)
			}
			assert.Zero(t, rl.Sweep())
			assert.Zero(t, rl.Len())
			assert.NotPanics(t, func() { rl.Run(context.Background()) })
		})
	}
}
