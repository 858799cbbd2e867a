package cachemanager

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zjrosen/mdlive/internal/log"
)

// Loader computes values on a cache miss. Concurrent misses for one key share
// a single call to load. Errors are returned but never cached, so a formula
// that failed to render is retried on the next pass.
type Loader[I, V any] struct {
	cache Cache[string, V]
	key   func(I) string
	load  func(context.Context, I) (V, error)
	ttl   time.Duration
	group singleflight.Group
}

// NewLoader puts load behind cache. key maps an input to its cache key and
// must be injective over inputs that render differently.
func NewLoader[I, V any](
	cache Cache[string, V],
	key func(I) string,
	load func(context.Context, I) (V, error),
	ttl time.Duration,
) *Loader[I, V] {
	return &Loader[I, V]{cache: cache, key: key, load: load, ttl: ttl}
}

// Load returns the cached value for in, computing and storing it on a miss.
func (l *Loader[I, V]) Load(ctx context.Context, in I) (V, error) {
	k := l.key(in)
	if v, ok := l.cache.Get(ctx, k); ok {
		return v, nil
	}

	res, err, shared := l.group.Do(k, func() (any, error) {
		v, err := l.load(ctx, in)
		if err != nil {
			return v, err
		}
		l.cache.Set(ctx, k, v, l.ttl)
		return v, nil
	})
	if shared {
		log.Debug(log.CatCache, "joined in-flight render", "key", k)
	}
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Peek returns a cached value without loading.
func (l *Loader[I, V]) Peek(ctx context.Context, in I) (V, bool) {
	return l.cache.Get(ctx, l.key(in))
}

// Store records a value computed outside Load.
func (l *Loader[I, V]) Store(ctx context.Context, in I, v V) {
	l.cache.Set(ctx, l.key(in), v, l.ttl)
}

// Forget drops the entry for in.
func (l *Loader[I, V]) Forget(ctx context.Context, in I) {
	l.cache.Delete(ctx, l.key(in))
}

// Cache exposes the backing cache.
func (l *Loader[I, V]) Cache() Cache[string, V] {
	return l.cache
}
