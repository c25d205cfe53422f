package geometry

import (
	"context"
	"log/slog"
	"strings"

	"github.com/maxweather/dashboard/internal/models"
)

// ZoneSource resolves a zone identifier to its geometry. The boolean is
// false when the zone has no usable geometry, whether because the fetch
// failed or the zone simply carries none.
type ZoneSource interface {
	Lookup(ctx context.Context, zoneID string) (*models.Geometry, bool)
}

// Reconstructor fills in missing alert geometry by stitching together the
// shapes of the zones the alert covers. Upstream geometry is
// authoritative and never overwritten; reconstruction only applies to a
// fixed set of event types where a zone outline is a fair stand-in for
// the real hazard area.
type Reconstructor struct {
	zones  ZoneSource
	events map[string]struct{}
}

// NewReconstructor builds a reconstructor over the given zone source.
// Event names are matched case-insensitively against fallbackEvents.
func NewReconstructor(zones ZoneSource, fallbackEvents []string) *Reconstructor {
	events := make(map[string]struct{}, len(fallbackEvents))
	for _, e := range fallbackEvents {
		events[strings.ToLower(e)] = struct{}{}
	}
	return &Reconstructor{zones: zones, events: events}
}

// Eligible reports whether a feature is a candidate for reconstruction:
// no geometry yet, a fallback-eligible event, and at least one affected
// zone.
func (r *Reconstructor) Eligible(f *models.AlertFeature) bool {
	if f.HasGeometry() {
		return false
	}
	if _, ok := r.events[strings.ToLower(f.Properties.Event)]; !ok {
		return false
	}
	return len(f.Properties.AffectedZones) > 0
}

// Augment mutates the feature in place, attaching a Polygon or
// MultiPolygon assembled from its affected zones. Zones that fail to
// resolve are skipped; when none resolve the feature is left without a
// shape. Overlapping zones are concatenated as separate rings rather than
// unioned, an intentional simplification for display purposes.
func (r *Reconstructor) Augment(ctx context.Context, f *models.AlertFeature) {
	if !r.Eligible(f) {
		return
	}

	var polygons []models.PolygonCoords
	for _, zoneID := range f.Properties.AffectedZones {
		geom, ok := r.zones.Lookup(ctx, zoneID)
		if !ok {
			continue
		}
		ps, err := geom.Polygons()
		if err != nil {
			slog.Debug("skipping zone with malformed coordinates", "zone", zoneID, "error", err)
			continue
		}
		polygons = append(polygons, ps...)
	}

	switch len(polygons) {
	case 0:
		// nothing resolved; the alert renders without a shape
	case 1:
		f.Geometry = models.PolygonGeometry(polygons[0])
	default:
		f.Geometry = models.MultiPolygonGeometry(polygons)
	}
}
