package rewrite

import "sync/atomic"

// Clock is a monotonic logical clock stamping trace events.
//
// Rewrites are ordered by the seq numbers this clock hands out, never
// by wall-clock time, so a recorded trace replays in the exact order
// the rewrites were applied.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// though the driver's single-threaded design means only one goroutine
// calls Next() in practice.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
