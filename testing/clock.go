package rootsynctesting

import (
	"context"
	"sync"
	"time"
)

// FakeClock is a manually advanced clock. Sleep advances it instantly and records
// the requested duration.
type FakeClock struct {
	mtx    sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

// NewFakeClock returns a clock stopped at now.
func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to now.
func (c *FakeClock) Set(now time.Time) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.now = now
}

func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

// Sleeps returns every duration passed to Sleep.
func (c *FakeClock) Sleeps() []time.Duration {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}
