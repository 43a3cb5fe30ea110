package cache

import (
	"context"
	"sync"

	"sanctionwatch/internal/entity/models"
)

// InMemoryStatsCache is a test double for the Redis cache. It counts
// operations so tests can assert hit/miss behavior.
type InMemoryStatsCache struct {
	mu    sync.Mutex
	stats *models.SourceStats

	Gets        int
	Sets        int
	Invalidates int
}

func NewInMemoryStatsCache() *InMemoryStatsCache {
	return &InMemoryStatsCache{}
}

func (c *InMemoryStatsCache) Get(_ context.Context) (*models.SourceStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Gets++
	return c.stats, nil
}

func (c *InMemoryStatsCache) Set(_ context.Context, stats *models.SourceStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sets++
	c.stats = stats
	return nil
}

func (c *InMemoryStatsCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Invalidates++
	c.stats = nil
	return nil
}
