package cachemanager

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/mdlive/internal/log"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// InMemory is a Cache backed by go-cache. The name only labels log lines.
type InMemory[K ~string, V any] struct {
	name   string
	cache  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

var _ Cache[string, string] = (*InMemory[string, string])(nil)

// NewInMemory creates a cache whose entries expire after expiration unless
// Set is given a ttl. Non-positive arguments fall back to the defaults.
func NewInMemory[K ~string, V any](name string, expiration, cleanup time.Duration) *InMemory[K, V] {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	if cleanup <= 0 {
		cleanup = DefaultCleanupInterval
	}
	return &InMemory[K, V]{name: name, cache: gocache.New(expiration, cleanup)}
}

func (c *InMemory[K, V]) Get(_ context.Context, key K) (V, bool) {
	var zero V
	raw, ok := c.cache.Get(string(key))
	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		log.Error(log.CatCache, "cached value has wrong type", "cache", c.name, "key", key)
		c.cache.Delete(string(key))
		c.misses.Add(1)
		return zero, false
	}
	c.hits.Add(1)
	return v, true
}

func (c *InMemory[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(string(key), value, ttl)
}

func (c *InMemory[K, V]) Delete(_ context.Context, keys ...K) {
	for _, k := range keys {
		c.cache.Delete(string(k))
	}
}

func (c *InMemory[K, V]) Flush(_ context.Context) {
	c.cache.Flush()
	log.Debug(log.CatCache, "cache flushed", "cache", c.name, "hits", c.hits.Load(), "misses", c.misses.Load())
}

// Count includes expired entries the janitor has not removed yet.
func (c *InMemory[K, V]) Count() int {
	return c.cache.ItemCount()
}

func (c *InMemory[K, V]) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}
