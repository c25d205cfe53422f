package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/maxweather/dashboard/internal/cache"
	"github.com/maxweather/dashboard/internal/config"
	"github.com/maxweather/dashboard/internal/geometry"
	"github.com/maxweather/dashboard/internal/models"
)

var (
	aggP1 = models.PolygonCoords{{{-100, 40}, {-99, 40}, {-99, 41}, {-100, 40}}}
	aggP2 = models.PolygonCoords{{{-90, 30}, {-89, 30}, {-89, 31}, {-90, 30}}}
	aggP3 = models.PolygonCoords{{{-80, 25}, {-79, 25}, {-79, 26}, {-80, 25}}}
)

// newUpstream fakes both NWS endpoints on one server: /alerts and the
// zone resources the alerts reference.
func newUpstream(t *testing.T, zoneHits *atomic.Int64) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/alerts", func(w http.ResponseWriter, r *http.Request) {
		coll := models.AlertCollection{
			Type: "FeatureCollection",
			Features: []*models.AlertFeature{
				{
					ID: "a1",
					Properties: models.AlertProperties{
						Event: "Wind Advisory",
						AffectedZones: []string{
							srv.URL + "/zones/Z1",
							srv.URL + "/zones/Z2",
							srv.URL + "/zones/broken",
						},
					},
				},
				{
					ID:       "a2",
					Geometry: models.PolygonGeometry(aggP3),
					Properties: models.AlertProperties{
						Event:         "Tornado Warning",
						AffectedZones: []string{srv.URL + "/zones/Z1"},
					},
				},
			},
			Title: "Current watches, warnings, and advisories",
		}
		json.NewEncoder(w).Encode(coll)
	})
	mux.HandleFunc("/zones/Z1", func(w http.ResponseWriter, r *http.Request) {
		zoneHits.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"geometry": models.PolygonGeometry(aggP1)})
	})
	mux.HandleFunc("/zones/Z2", func(w http.ResponseWriter, r *http.Request) {
		zoneHits.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"geometry": models.MultiPolygonGeometry([]models.PolygonCoords{aggP2, aggP3}),
		})
	})
	mux.HandleFunc("/zones/broken", func(w http.ResponseWriter, r *http.Request) {
		zoneHits.Add(1)
		http.Error(w, "no such zone", http.StatusNotFound)
	})

	srv = httptest.NewServer(mux)
	return srv
}

func newTestAggregator(alertsURL string) (*Aggregator, *cache.ZoneCache) {
	client := NewClient(testUpstreamConfig(alertsURL))
	zones := cache.NewZoneCache(client.FetchZoneGeometry)
	recon := geometry.NewReconstructor(zones, config.DefaultFallbackEvents())
	return NewAggregator(client, recon, zones, 4), zones
}

func TestFetchAll_ReconstructsFromZones(t *testing.T) {
	var zoneHits atomic.Int64
	srv := newUpstream(t, &zoneHits)
	defer srv.Close()

	agg, _ := newTestAggregator(srv.URL + "/alerts")
	coll, err := agg.FetchAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(coll.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(coll.Features))
	}

	// a1: Z1 (Polygon P1) + Z2 (MultiPolygon P2,P3) -> MultiPolygon [P1,P2,P3];
	// the broken zone is skipped silently
	a1 := coll.Features[0]
	if a1.Geometry == nil || a1.Geometry.Type != "MultiPolygon" {
		t.Fatalf("a1: expected MultiPolygon, got %+v", a1.Geometry)
	}
	got, err := a1.Geometry.Polygons()
	if err != nil {
		t.Fatal(err)
	}
	want := []models.PolygonCoords{aggP1, aggP2, aggP3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("a1: unexpected polygons: got %v, want %v", got, want)
	}

	// a2 had upstream geometry and an ineligible event; untouched
	a2 := coll.Features[1]
	if a2.Geometry == nil || a2.Geometry.Type != "Polygon" {
		t.Fatalf("a2: expected original Polygon, got %+v", a2.Geometry)
	}

	if coll.Title == "" {
		t.Error("collection metadata should pass through")
	}
}

func TestFetchAll_ZoneCacheLimitsUpstreamHits(t *testing.T) {
	var zoneHits atomic.Int64
	srv := newUpstream(t, &zoneHits)
	defer srv.Close()

	agg, zones := newTestAggregator(srv.URL + "/alerts")

	ctx := context.Background()
	if _, err := agg.FetchAll(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := agg.FetchAll(ctx); err != nil {
		t.Fatal(err)
	}

	// 3 distinct zones, fetched once each across both cycles
	if zoneHits.Load() != 3 {
		t.Errorf("expected 3 zone fetches total, got %d", zoneHits.Load())
	}
	if zones.Size() != 3 {
		t.Errorf("expected 3 cached zones, got %d", zones.Size())
	}
}

func TestFetchAll_AllZonesFailLeavesGeometryAbsent(t *testing.T) {
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/alerts", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"type":"FeatureCollection","features":[{"id":"a1","geometry":null,"properties":{"event":"Wind Advisory","affectedZones":[%q,%q]}}]}`,
			srv.URL+"/zones/Z1", srv.URL+"/zones/Z2")
	})
	mux.HandleFunc("/zones/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	agg, _ := newTestAggregator(srv.URL + "/alerts")
	coll, err := agg.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("zone failures must not fail the collection: %v", err)
	}

	if coll.Features[0].HasGeometry() {
		t.Error("expected geometry to stay absent when no zone resolves")
	}
}

func TestFetchAll_CollectionFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	agg, _ := newTestAggregator(srv.URL)
	_, err := agg.FetchAll(context.Background())

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}
