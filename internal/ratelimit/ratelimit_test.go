package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// simClock advances simulated time when the limiter sleeps, recording each
// sleep duration.
type simClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func (c *simClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *simClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func (c *simClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestUnderLimitNoDelay(t *testing.T) {
	clock := &simClock{now: time.Unix(1000, 0)}
	l := NewWithClock(3, 60*time.Second, clock.Now, clock.Sleep)

	for i := 0; i < 3; i++ {
		l.Wait()
		clock.Advance(time.Second)
	}
	assert.Empty(t, clock.sleeps)
}

func TestExceedingLimitDelays(t *testing.T) {
	clock := &simClock{now: time.Unix(1000, 0)}
	l := NewWithClock(3, 60*time.Second, clock.Now, clock.Sleep)

	l.Wait()
	clock.Advance(time.Second)
	l.Wait()
	clock.Advance(time.Second)
	l.Wait()
	clock.Advance(time.Second)

	// Fourth call arrives 3s after the first; it must wait until the first
	// call leaves the trailing 60s window.
	l.Wait()
	require.Len(t, clock.sleeps, 1)
	assert.Equal(t, 57*time.Second, clock.sleeps[0])
}

func TestWindowSlidesForward(t *testing.T) {
	clock := &simClock{now: time.Unix(1000, 0)}
	l := NewWithClock(2, 60*time.Second, clock.Now, clock.Sleep)

	l.Wait()
	l.Wait()
	clock.Advance(61 * time.Second)

	// All previous calls fell out of the window.
	l.Wait()
	assert.Empty(t, clock.sleeps)
	assert.Len(t, l.calls, 1)
}

func TestWindowInvariantAfterWait(t *testing.T) {
	clock := &simClock{now: time.Unix(1000, 0)}
	l := NewWithClock(5, 60*time.Second, clock.Now, clock.Sleep)

	for i := 0; i < 20; i++ {
		l.Wait()
		clock.Advance(500 * time.Millisecond)
		assert.LessOrEqual(t, len(l.calls), 5)
	}
}
