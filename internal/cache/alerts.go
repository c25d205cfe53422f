package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/maxweather/dashboard/internal/models"
)

// AggregateFunc produces a fresh, fully-augmented alert collection.
type AggregateFunc func(ctx context.Context) (*models.AlertCollection, error)

// AlertCache is a single-slot TTL cache over the aggregated collection,
// keeping the upstream alerts endpoint to at most one fetch per TTL
// window no matter how many clients are reading. Refresh is lazy: the
// first read past the TTL pays for the fetch, and concurrent readers
// during a miss share one flight.
type AlertCache struct {
	fetch AggregateFunc
	ttl   time.Duration

	mu        sync.Mutex
	last      *models.AlertCollection
	fetchedAt time.Time

	flight singleflight.Group
}

func NewAlertCache(ttl time.Duration, fetch AggregateFunc) *AlertCache {
	return &AlertCache{fetch: fetch, ttl: ttl}
}

// Get returns the cached collection, refreshing it first when it is
// missing or older than the TTL. When a refresh fails after a prior
// success, the last good collection is returned with stale=true and the
// refresh error alongside; the error stands alone only when no collection
// has ever been fetched.
func (c *AlertCache) Get(ctx context.Context) (*models.AlertCollection, bool, error) {
	c.mu.Lock()
	last, fetchedAt := c.last, c.fetchedAt
	c.mu.Unlock()

	if last != nil && time.Since(fetchedAt) <= c.ttl {
		return last, false, nil
	}

	v, err, _ := c.flight.Do("alerts", func() (any, error) {
		// another caller may have refreshed while we queued for the flight
		c.mu.Lock()
		last, fetchedAt := c.last, c.fetchedAt
		c.mu.Unlock()
		if last != nil && time.Since(fetchedAt) <= c.ttl {
			return last, nil
		}

		coll, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.last, c.fetchedAt = coll, time.Now()
		c.mu.Unlock()
		return coll, nil
	})
	if err != nil {
		if last != nil {
			return last, true, err
		}
		return nil, false, err
	}

	return v.(*models.AlertCollection), false, nil
}
