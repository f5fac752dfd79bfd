// Package cache provides the in-memory TTL cache that fronts store reads.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the cache settings.
type Config struct {
	DefaultTTL      time.Duration // TTL applied by Set
	CleanupInterval time.Duration // How often expired items are swept; 0 disables the sweeper
	MaxItems        int           // Soft capacity; 0 means unbounded
	OnEviction      func(key string, value any)
}

type item struct {
	value     any
	expiresAt time.Time
}

// Cache is a concurrency-safe map with per-item expiry.
type Cache struct {
	data   sync.Map
	size   atomic.Int64
	config Config

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a cache and starts its cleanup goroutine.
func New(config Config) *Cache {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 10 * time.Minute
	}
	c := &Cache{
		config: config,
		stop:   make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		go c.cleanupLoop(config.CleanupInterval)
	}
	return c
}

// Set stores a value with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	c.SetWithTTL(ctx, key, value, c.config.DefaultTTL)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache) SetWithTTL(_ context.Context, key string, value any, ttl time.Duration) {
	if _, loaded := c.data.Swap(key, &item{value: value, expiresAt: time.Now().Add(ttl)}); !loaded {
		c.size.Add(1)
	}
	if c.config.MaxItems > 0 && c.size.Load() > int64(c.config.MaxItems) {
		c.evictOne(key)
	}
}

// Get returns a live value.
func (c *Cache) Get(_ context.Context, key string) (any, bool) {
	raw, ok := c.data.Load(key)
	if !ok {
		return nil, false
	}
	it := raw.(*item)
	if time.Now().After(it.expiresAt) {
		c.remove(key, it)
		return nil, false
	}
	return it.value, true
}

// Delete removes a value.
func (c *Cache) Delete(_ context.Context, key string) {
	if raw, loaded := c.data.LoadAndDelete(key); loaded {
		c.size.Add(-1)
		c.notify(key, raw.(*item))
	}
}

// Clear removes every value.
func (c *Cache) Clear(ctx context.Context) {
	c.data.Range(func(key, _ any) bool {
		c.Delete(ctx, key.(string))
		return true
	})
}

// Size returns the number of stored items, including expired ones not yet swept.
func (c *Cache) Size() int64 {
	return c.size.Load()
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) deleteExpired() {
	now := time.Now()
	c.data.Range(func(key, raw any) bool {
		if it := raw.(*item); now.After(it.expiresAt) {
			c.remove(key.(string), it)
		}
		return true
	})
}

// evictOne drops an arbitrary item other than keep.
func (c *Cache) evictOne(keep string) {
	c.data.Range(func(key, raw any) bool {
		if key.(string) == keep {
			return true
		}
		c.remove(key.(string), raw.(*item))
		return false
	})
}

func (c *Cache) remove(key string, it *item) {
	if c.data.CompareAndDelete(key, it) {
		c.size.Add(-1)
		c.notify(key, it)
	}
}

func (c *Cache) notify(key string, it *item) {
	if c.config.OnEviction != nil {
		c.config.OnEviction(key, it.value)
	}
}
