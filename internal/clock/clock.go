// Package clock abstracts wall-clock reads so timestamps are testable.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time. Stores keep second resolution, so
// callers persist Now().Truncate(time.Second).
type Clock interface {
	Now() time.Time
}

// Real returns a Clock backed by time.Now in UTC.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// FakeClock is a deterministic Clock for tests. Time moves only on Advance or Set.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
}

func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// Seconds truncates t to the store's resolution.
func Seconds(c Clock) time.Time {
	return c.Now().Truncate(time.Second)
}
