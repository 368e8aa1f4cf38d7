package app

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// RateLimiter is a sliding-window limiter keyed by identity, so opening more
// connections does not buy more messages.
type RateLimiter struct {
	mu       sync.Mutex
	history  map[domain.IdentityID][]time.Time
	limit    int
	interval time.Duration
	now      func() time.Time
}

// NewRateLimiter returns nil when limit or interval is not positive; a nil limiter allows everything.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 || interval <= 0 {
		return nil
	}
	return &RateLimiter{
		history:  make(map[domain.IdentityID][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

// Reserve takes a slot in id's window. Calling release hands the slot back,
// for an attempt that failed after the check.
func (rl *RateLimiter) Reserve(id domain.IdentityID) (release func(), ok bool) {
	if rl == nil {
		return func() {}, true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	fresh := rl.freshLocked(id, now)
	if len(fresh) >= rl.limit {
		rl.history[id] = fresh
		return nil, false
	}
	rl.history[id] = append(fresh, now)

	var once sync.Once
	return func() { once.Do(func() { rl.release(id, now) }) }, true
}

func (rl *RateLimiter) release(id domain.IdentityID, at time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	attempts := rl.history[id]
	for i := len(attempts) - 1; i >= 0; i-- {
		if attempts[i].Equal(at) {
			attempts = append(attempts[:i], attempts[i+1:]...)
			break
		}
	}
	if len(attempts) == 0 {
		delete(rl.history, id)
		return
	}
	rl.history[id] = attempts
}

// freshLocked drops attempts that slid out of the window; an identity left with none is forgotten.
func (rl *RateLimiter) freshLocked(id domain.IdentityID, now time.Time) []time.Time {
	windowStart := now.Add(-rl.interval)
	attempts := rl.history[id]
	fresh := make([]time.Time, 0, len(attempts)+1)
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) == 0 {
		delete(rl.history, id)
	}
	return fresh
}

// Sweep forgets every identity whose window holds no attempts. It returns how many were dropped.
func (rl *RateLimiter) Sweep() int {
	if rl == nil {
		return 0
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	before := len(rl.history)
	for id := range rl.history {
		if fresh := rl.freshLocked(id, now); len(fresh) > 0 {
			rl.history[id] = fresh
		}
	}
	return before - len(rl.history)
}

// Run sweeps once per window until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	if rl == nil {
		return
	}
	ticker := time.NewTicker(rl.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Sweep(); n > 0 {
				log.Debug().Str("module", "app").Int("forgotten", n).Msg("rate limiter sweep")
			}
		}
	}
}

// Len is the number of identities currently tracked.
func (rl *RateLimiter) Len() int {
	if rl == nil {
		return 0
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.history)
}
