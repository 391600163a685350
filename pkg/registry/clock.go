package registry

import (
	"sync"
	"time"
)

// Clock provides the current time to the registry.
type Clock interface {
	Now() time.Time
}

// ClockFunc is func form of Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock uses time.Now.
var SystemClock Clock = ClockFunc(time.Now)

// ManualClock is a Clock which only moves when told to.
type ManualClock struct {
	now  time.Time
	lock sync.Mutex
}

// NewManualClock creates a ManualClock starting at t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

// Now implements Clock.
func (c *ManualClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *ManualClock) Advance(d time.Duration) {
	c.lock.Lock()
	c.now = c.now.Add(d)
	c.lock.Unlock()
}

// Millis converts t to integer milliseconds since the Unix epoch.
func Millis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}
