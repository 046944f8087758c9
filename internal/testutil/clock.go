package testutil

import (
	"sync"
	"time"
)

// DeterministicClock is a thread-safe fake wall clock for tests.
//
// Each call to Now advances the clock by Step, so timestamps written by the
// code under test are predictable and strictly increasing.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	n     int64
}

// NewDeterministicClock creates a clock whose first Now returns start.
func NewDeterministicClock(start time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{start: start, step: step}
}

// Now returns the next timestamp.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.n) * c.step)
	c.n++
	return t
}

// Reset rewinds the clock so the next Now returns start again.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
