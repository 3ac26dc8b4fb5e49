package hal

import "time"

// hostClock measures the time between frame loop ticks.
type hostClock struct {
	now  func() time.Time
	last time.Time
}

func newHostClock() *hostClock {
	return &hostClock{now: time.Now}
}

// step returns the seconds elapsed since the previous step. The first step returns 0.
func (c *hostClock) step() float64 {
	now := c.now()
	if c.last.IsZero() {
		c.last = now
		return 0
	}
	d := now.Sub(c.last)
	c.last = now
	if d < 0 {
		return 0
	}
	return d.Seconds()
}
