// Package ratelimit implements the bot-wide request window shared by every
// user. Admins bypass it.
package ratelimit

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Window is the length of one counting window.
const Window = time.Minute

// Result is the outcome of a Check.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts requests in a fixed window that restarts once it has been
// open for a full minute.
type Limiter struct {
	limit func() int
	now   func() time.Time

	mu          sync.Mutex
	windowStart time.Time
	count       int
}

// New returns a Limiter reading the per-minute limit from limit on every call,
// so admin changes apply without a restart.
func New(limit func() int) *Limiter {
	return newWithClock(limit, time.Now)
}

func newWithClock(limit func() int, now func() time.Time) *Limiter {
	return &Limiter{
		limit:       limit,
		now:         now,
		windowStart: now(),
	}
}

// Check consumes one slot for a non-admin request if one is free.
func (l *Limiter) Check(userID, command string, isAdmin bool) Result {
	limit := l.limit()
	if limit < 1 {
		limit = 1
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	elapsed := now.Sub(l.windowStart)
	if elapsed >= Window {
		l.windowStart = now
		l.count = 0
		elapsed = 0
	}

	if isAdmin {
		return Result{Allowed: true, Remaining: limit}
	}

	if l.count >= limit {
		log.WithFields(log.Fields{
			"module":  "ratelimit",
			"user_id": userID,
			"command": command,
			"limit":   limit,
		}).Warn("Rate limit hit")
		return Result{Allowed: false, Remaining: 0, RetryAfter: Window - elapsed}
	}

	l.count++
	return Result{Allowed: true, Remaining: limit - l.count}
}
