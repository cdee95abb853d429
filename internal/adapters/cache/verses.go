// Package cache provides an in-memory decorator for verse lookups.
package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jsamuelsen/verse-recommender/internal/domain"
	"github.com/jsamuelsen/verse-recommender/internal/platform/telemetry"
	"github.com/jsamuelsen/verse-recommender/internal/ports"
)

const (
	// DefaultTTL is how long a resolved verse stays cached.
	DefaultTTL = time.Hour

	defaultCleanupInterval = 10 * time.Minute
)

// Config configures a VerseCache.
type Config struct {
	// Edition is part of every key so caches for different editions never mix.
	Edition string

	// TTL defaults to DefaultTTL.
	TTL time.Duration

	// CleanupInterval defaults to ten minutes.
	CleanupInterval time.Duration

	Metrics *telemetry.RecommenderMetrics
}

// VerseCache wraps a ports.VerseLookup and keeps successful lookups in memory.
// Failures are never cached, so a transient upstream error is retried on the
// next request.
type VerseCache struct {
	next    ports.VerseLookup
	cache   *gocache.Cache
	edition string
	metrics *telemetry.RecommenderMetrics
}

var _ ports.VerseLookup = (*VerseCache)(nil)

// NewVerseCache decorates next. Panics if next is nil.
func NewVerseCache(next ports.VerseLookup, cfg Config) *VerseCache {
	if next == nil {
		panic("cache: NewVerseCache requires a VerseLookup")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = defaultCleanupInterval
	}

	return &VerseCache{
		next:    next,
		cache:   gocache.New(ttl, cleanup),
		edition: cfg.Edition,
		metrics: cfg.Metrics,
	}
}

// LookupVerse returns the cached display for ref or asks the wrapped lookup.
func (c *VerseCache) LookupVerse(ctx context.Context, ref domain.VerseRef) (*domain.VerseDisplay, error) {
	key := c.key(ref)

	if v, found := c.cache.Get(key); found {
		c.metrics.RecordLookup(ctx, telemetry.OutcomeCacheHit)

		d := v.(domain.VerseDisplay)
		return &d, nil
	}

	display, err := c.next.LookupVerse(ctx, ref)
	if err != nil {
		return nil, err
	}

	if display != nil {
		c.cache.SetDefault(key, *display)
	}

	return display, nil
}

// Len returns the number of cached entries, expired ones included until cleanup.
func (c *VerseCache) Len() int {
	return c.cache.ItemCount()
}

// Flush drops every entry.
func (c *VerseCache) Flush() {
	c.cache.Flush()
}

func (c *VerseCache) key(ref domain.VerseRef) string {
	return fmt.Sprintf("%d:%d:%s", ref.Surah, ref.Verse, c.edition)
}
