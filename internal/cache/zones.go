package cache

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/maxweather/dashboard/internal/models"
)

// ZoneFetchFunc retrieves one zone's geometry from upstream.
type ZoneFetchFunc func(ctx context.Context, zoneID string) (*models.Geometry, error)

// ZoneCache memoizes zone geometry lookups for the life of the process.
// Zone boundaries are effectively static, so entries never expire and the
// cache is deliberately unbounded; the only eviction is a restart. Failed
// lookups are remembered too, so each distinct zone is fetched at most
// once no matter how it resolved.
type ZoneCache struct {
	fetch ZoneFetchFunc

	mu      sync.RWMutex
	entries map[string]*models.Geometry // nil entry = resolved, no geometry

	flight singleflight.Group
}

func NewZoneCache(fetch ZoneFetchFunc) *ZoneCache {
	return &ZoneCache{
		fetch:   fetch,
		entries: make(map[string]*models.Geometry),
	}
}

// Lookup returns the zone's geometry, fetching it on first sight.
// Concurrent lookups for the same zone share a single fetch. The boolean
// is false when the zone resolved to no usable geometry.
func (c *ZoneCache) Lookup(ctx context.Context, zoneID string) (*models.Geometry, bool) {
	c.mu.RLock()
	geom, ok := c.entries[zoneID]
	c.mu.RUnlock()
	if ok {
		return geom, geom != nil
	}

	v, _, _ := c.flight.Do(zoneID, func() (any, error) {
		// an earlier flight may have landed while we queued
		c.mu.RLock()
		geom, ok := c.entries[zoneID]
		c.mu.RUnlock()
		if ok {
			return geom, nil
		}

		geom = nil
		if g, err := c.fetch(ctx, zoneID); err != nil {
			slog.Error("zone geometry fetch failed", "zone", zoneID, "error", err)
		} else {
			geom = g
		}

		c.mu.Lock()
		c.entries[zoneID] = geom
		c.mu.Unlock()
		return geom, nil
	})

	geom, _ = v.(*models.Geometry)
	return geom, geom != nil
}

// Size returns the number of zones resolved so far, failures included.
func (c *ZoneCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
