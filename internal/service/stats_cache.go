package service

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/garnizeh/problemhub/internal/models"
)

const publicStatsKey = "public"

// StatsCache keeps the last computed public statistics for a bounded time.
// Every Invalidate bumps a generation so that a computation started before
// it cannot store its result afterwards.
type StatsCache struct {
	lru *expirable.LRU[string, models.PublicStats]

	mu  sync.Mutex
	gen uint64
}

func NewStatsCache(ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &StatsCache{lru: expirable.NewLRU[string, models.PublicStats](1, nil, ttl)}
}

func (c *StatsCache) Get() (models.PublicStats, bool) {
	if c == nil {
		return models.PublicStats{}, false
	}
	return c.lru.Get(publicStatsKey)
}

// Generation returns the token a recomputation passes to Store.
func (c *StatsCache) Generation() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Store caches s unless the cache was invalidated after gen was taken.
func (c *StatsCache) Store(gen uint64, s models.PublicStats) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.lru.Add(publicStatsKey, s)
	return true
}

// Invalidate drops the cached value; called by every mutation that changes
// what the public statistics count.
func (c *StatsCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.lru.Remove(publicStatsKey)
}
