package testutil

import (
	"time"

	"lifeboat/internal/life"
)

// StubClock is a manually advanced clock for tests.
type StubClock struct {
	Time time.Time
}

var _ life.Clock = (*StubClock)(nil)

// NewStubClock returns a clock fixed at 2024-01-15 10:30:00 UTC.
func NewStubClock() *StubClock {
	return &StubClock{Time: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
}

func (c *StubClock) Now() time.Time {
	return c.Time
}

// Advance moves the clock forward by d.
func (c *StubClock) Advance(d time.Duration) {
	c.Time = c.Time.Add(d)
}
