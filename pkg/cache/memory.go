package cache

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	count    int64
	expireAt time.Time
}

// MemoryCache implements Counter in process memory.
type MemoryCache struct {
	mu       sync.Mutex
	data     map[string]*counter
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryCache creates an in-memory counter store with a background janitor.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := defaultMemoryConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		data: make(map[string]*counter),
		now:  cfg.Now,
		stop: make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go mc.cleanupExpired(cfg.CleanupInterval)
	}
	return mc
}

func (mc *MemoryCache) IncrWindow(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := mc.now()
	mc.mu.Lock()
	defer mc.mu.Unlock()

	c, ok := mc.data[key]
	if !ok || !now.Before(c.expireAt) {
		c = &counter{expireAt: now.Add(window)}
		mc.data[key] = c
	}
	c.count++
	return c.count, c.expireAt.Sub(now), nil
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, k := range keys {
		delete(mc.data, k)
	}
	return nil
}

// Len returns the number of live counters.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.data)
}

func (mc *MemoryCache) Close() error {
	mc.stopOnce.Do(func() { close(mc.stop) })
	return nil
}

func (mc *MemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			mc.purge()
		case <-mc.stop:
			return
		}
	}
}

func (mc *MemoryCache) purge() {
	now := mc.now()
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for k, c := range mc.data {
		if !now.Before(c.expireAt) {
			delete(mc.data, k)
		}
	}
}

var _ Counter = (*MemoryCache)(nil)
