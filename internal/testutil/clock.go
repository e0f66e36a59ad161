package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant returned by a StepClock.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// StepClock is a deterministic clock for tests. Each call to Now returns
// the previous instant plus one second, starting at Epoch.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu    sync.Mutex
	ticks int64
}

// NewStepClock creates a clock whose first reading is Epoch.
func NewStepClock() *StepClock {
	return &StepClock{}
}

// Now returns the next instant.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := Epoch.Add(time.Duration(c.ticks) * time.Second)
	c.ticks++
	return t
}

// Reset rewinds the clock so the next reading is Epoch again.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = 0
}
