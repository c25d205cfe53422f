package ingestion

import (
	"context"
	"log/slog"

	"github.com/maxweather/dashboard/internal/geometry"
	"github.com/maxweather/dashboard/internal/models"
	"github.com/maxweather/dashboard/internal/worker"
)

// Aggregator produces the augmented alert collection: one fetch of the
// active-alerts feed, then geometry reconstruction for every feature that
// needs and qualifies for it.
type Aggregator struct {
	client  *Client
	recon   *geometry.Reconstructor
	zones   geometry.ZoneSource
	workers int
}

func NewAggregator(client *Client, recon *geometry.Reconstructor, zones geometry.ZoneSource, zoneWorkers int) *Aggregator {
	return &Aggregator{
		client:  client,
		recon:   recon,
		zones:   zones,
		workers: zoneWorkers,
	}
}

// FetchAll fetches the collection and augments its features in the order
// received. Collection-level failures propagate to the caller untouched;
// zone-level failures only cost individual features their shapes.
func (a *Aggregator) FetchAll(ctx context.Context) (*models.AlertCollection, error) {
	coll, err := a.client.FetchActiveAlerts(ctx)
	if err != nil {
		return nil, err
	}

	a.prefetchZones(ctx, coll.Features)

	augmented := 0
	for _, f := range coll.Features {
		had := f.HasGeometry()
		a.recon.Augment(ctx, f)
		if !had && f.HasGeometry() {
			augmented++
		}
	}

	slog.Debug("aggregated alerts", "features", len(coll.Features), "augmented", augmented)
	return coll, nil
}

// prefetchZones warms the zone cache for every zone the reconstructor
// will ask about, with bounded concurrency. Augmentation afterwards runs
// sequentially so feature order is untouched; racing lookups for the same
// zone are deduplicated by the cache itself.
func (a *Aggregator) prefetchZones(ctx context.Context, features []*models.AlertFeature) {
	seen := make(map[string]struct{})
	pool := worker.NewPool(ctx, a.workers, func(ctx context.Context, zoneID string) {
		a.zones.Lookup(ctx, zoneID)
	})
	for _, f := range features {
		if !a.recon.Eligible(f) {
			continue
		}
		for _, zoneID := range f.Properties.AffectedZones {
			if _, ok := seen[zoneID]; ok {
				continue
			}
			seen[zoneID] = struct{}{}
			pool.Submit(zoneID)
		}
	}
	pool.Wait()
}
