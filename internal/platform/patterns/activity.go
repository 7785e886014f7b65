package patterns

import (
	"fmt"
	"time"
)

const (
	// IdleThreshold is the minimum idle time before simulating activity.
	IdleThreshold = 5 * time.Second

	// ActiveLogInterval is how often to log when skipping simulation due to user activity.
	ActiveLogInterval = 2 * time.Minute
)

// ActivityTracker infers user activity from cursor displacement: if the
// cursor is not where we last left it, somebody else moved it.
type ActivityTracker struct {
	threshold     time.Duration
	expectX       int
	expectY       int
	known         bool
	lastActivity  time.Time
	lastActiveLog time.Time
}

// NewActivityTracker creates a tracker. A non-positive threshold uses IdleThreshold.
func NewActivityTracker(threshold time.Duration) *ActivityTracker {
	if threshold <= 0 {
		threshold = IdleThreshold
	}
	return &ActivityTracker{threshold: threshold}
}

// Placed records where the engine left the cursor.
func (t *ActivityTracker) Placed(x, y int) {
	t.expectX, t.expectY = x, y
	t.known = true
}

// Observe compares the current cursor position with the last placement.
func (t *ActivityTracker) Observe(x, y int, now time.Time) {
	if t.known && (x != t.expectX || y != t.expectY) {
		t.lastActivity = now
	}
	t.Placed(x, y)
}

// Idle reports how long since the user last moved the cursor. Before any
// user movement has been seen the user counts as idle forever.
func (t *ActivityTracker) Idle(now time.Time) time.Duration {
	if t.lastActivity.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	return now.Sub(t.lastActivity)
}

// IdleCheckResult represents the result of an idle check.
type IdleCheckResult struct {
	ShouldSimulate bool
	LogMessage     string // Non-empty if a log message should be emitted
}

// Check decides whether to run a cycle now. Log messages are rate-limited
// so a busy user does not flood the log.
func (t *ActivityTracker) Check(now time.Time) IdleCheckResult {
	idle := t.Idle(now)

	if idle <= t.threshold {
		if t.lastActiveLog.IsZero() || now.Sub(t.lastActiveLog) > ActiveLogInterval {
			t.lastActiveLog = now
			return IdleCheckResult{
				LogMessage: fmt.Sprintf("user is active (idle: %v); skipping cycle", idle.Round(time.Millisecond)),
			}
		}
		return IdleCheckResult{}
	}

	if !t.lastActiveLog.IsZero() {
		t.lastActiveLog = time.Time{}
		return IdleCheckResult{
			ShouldSimulate: true,
			LogMessage:     fmt.Sprintf("user became idle (%v); resuming", idle.Round(time.Millisecond)),
		}
	}
	return IdleCheckResult{ShouldSimulate: true}
}
