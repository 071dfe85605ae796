package ratelimit

import (
	"sync"
	"time"

	"fixture-tracker/internal/metrics"
)

// Limiter admits at most maxCalls calls within a trailing window. Wait blocks
// until one more call fits, then records it; it never rejects. Safe for
// concurrent callers sharing the same window.
type Limiter struct {
	mu       sync.Mutex
	maxCalls int
	window   time.Duration
	calls    []time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

func New(maxCalls int, window time.Duration) *Limiter {
	return &Limiter{
		maxCalls: maxCalls,
		window:   window,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// NewWithClock is used by tests to control time and observe sleeps.
func NewWithClock(maxCalls int, window time.Duration, now func() time.Time, sleep func(time.Duration)) *Limiter {
	l := New(maxCalls, window)
	l.now = now
	l.sleep = sleep
	return l
}

// Wait blocks until issuing one more call keeps the trailing window at or
// under maxCalls, then records the call timestamp.
func (l *Limiter) Wait() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	if len(l.calls) >= l.maxCalls {
		wait := l.window - now.Sub(l.calls[0])
		if wait > 0 {
			metrics.RateLimitWaits.Inc()
			l.sleep(wait)
			now = l.now()
			l.prune(now)
		}
	}

	l.calls = append(l.calls, now)
}

// prune drops timestamps older than the window. Caller holds the lock.
func (l *Limiter) prune(now time.Time) {
	kept := l.calls[:0]
	for _, t := range l.calls {
		if now.Sub(t) < l.window {
			kept = append(kept, t)
		}
	}
	l.calls = kept
}
