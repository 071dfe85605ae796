package cache

import (
	"fmt"
	"sync"
	"time"

	"fixture-tracker/internal/constants"
	"fixture-tracker/internal/metrics"
)

// Tier selects one of the cache partitions. Each tier owns its own TTL, so
// the caller picks a tier to match the volatility of the data.
type Tier string

const (
	TierShort  Tier = "short"
	TierMedium Tier = "medium"
	TierLong   Tier = "long"
)

type entry struct {
	value    any
	storedAt time.Time
}

type tier struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
}

// Tiered is an in-process key/value cache partitioned into tiers with
// independent TTLs. Expired entries are evicted lazily on read; there is no
// background sweep.
type Tiered struct {
	tiers map[Tier]*tier
	now   func() time.Time
}

func New() *Tiered {
	return &Tiered{
		tiers: map[Tier]*tier{
			TierShort:  {ttl: constants.ShortCacheTTL, entries: make(map[string]entry)},
			TierMedium: {ttl: constants.MediumCacheTTL, entries: make(map[string]entry)},
			TierLong:   {ttl: constants.LongCacheTTL, entries: make(map[string]entry)},
		},
		now: time.Now,
	}
}

// NewWithClock is used by tests to control expiry.
func NewWithClock(now func() time.Time) *Tiered {
	c := New()
	c.now = now
	return c
}

// Get returns the cached value for key in the given tier. An entry older than
// the tier's TTL is removed and reported as absent.
func (c *Tiered) Get(key string, t Tier) (any, bool) {
	ct, err := c.tier(t)
	if err != nil {
		return nil, false
	}

	ct.mu.Lock()
	defer ct.mu.Unlock()

	e, ok := ct.entries[key]
	if !ok {
		metrics.CacheMisses.WithLabelValues(string(t)).Inc()
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= ct.ttl {
		delete(ct.entries, key)
		metrics.CacheMisses.WithLabelValues(string(t)).Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues(string(t)).Inc()
	return e.value, true
}

// Set stores value under key in the given tier, overwriting any existing
// entry and stamping the current time.
func (c *Tiered) Set(key string, value any, t Tier) {
	ct, err := c.tier(t)
	if err != nil {
		return
	}

	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.entries[key] = entry{value: value, storedAt: c.now()}
}

// Clear drops every entry in one tier.
func (c *Tiered) Clear(t Tier) {
	ct, err := c.tier(t)
	if err != nil {
		return
	}

	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.entries = make(map[string]entry)
}

// ClearAll drops every entry in every tier. The API client calls this on
// construction to guarantee a cold start.
func (c *Tiered) ClearAll() {
	for t := range c.tiers {
		c.Clear(t)
	}
}

// Len reports the number of live entries in a tier, expired ones included
// until they are read.
func (c *Tiered) Len(t Tier) int {
	ct, err := c.tier(t)
	if err != nil {
		return 0
	}

	ct.mu.Lock()
	defer ct.mu.Unlock()
	return len(ct.entries)
}

func (c *Tiered) tier(t Tier) (*tier, error) {
	ct, ok := c.tiers[t]
	if !ok {
		return nil, fmt.Errorf("unknown cache tier %q", t)
	}
	return ct, nil
}
