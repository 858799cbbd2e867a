// Package cachemanager keeps rendered widget output keyed by source text.
//
// Math and diagram rendering are the only expensive steps of a decoration
// pass. A Loader in front of a Cache makes a repeated pass over an unchanged
// document cost one map lookup per widget.
package cachemanager

import (
	"context"
	"time"
)

// Cache is a TTL cache. A ttl of zero means the cache's default expiration.
type Cache[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K)
	Flush(ctx context.Context)
	Count() int
}

// Stats counts lookups since the cache was created.
type Stats struct {
	Hits   int64
	Misses int64
}

// HitRate is Hits over all lookups, or zero before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
