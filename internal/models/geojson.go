package models

import (
	"encoding/json"
	"fmt"
)

// Geometry is a GeoJSON geometry as received from upstream. Coordinates
// stay raw so collections round-trip without loss; callers that need the
// polygon structure go through Polygons.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// PolygonCoords is the coordinate array of one GeoJSON Polygon: a list of
// rings, each ring a list of [lon, lat] positions.
type PolygonCoords [][][]float64

// Polygons flattens the geometry into individual polygon coordinate sets.
// A Polygon yields itself, a MultiPolygon yields each member in order.
// Geometry types that are not polygonal yield nothing, as do null or
// empty coordinates, so a degenerate zone never contributes a shape.
func (g *Geometry) Polygons() ([]PolygonCoords, error) {
	if g == nil || g.Type == "" || len(g.Coordinates) == 0 || string(g.Coordinates) == "null" {
		return nil, nil
	}

	switch g.Type {
	case "Polygon":
		var p PolygonCoords
		if err := json.Unmarshal(g.Coordinates, &p); err != nil {
			return nil, fmt.Errorf("error decoding Polygon coordinates: %w", err)
		}
		if len(p) == 0 {
			return nil, nil
		}
		return []PolygonCoords{p}, nil
	case "MultiPolygon":
		var ps []PolygonCoords
		if err := json.Unmarshal(g.Coordinates, &ps); err != nil {
			return nil, fmt.Errorf("error decoding MultiPolygon coordinates: %w", err)
		}
		out := ps[:0]
		for _, p := range ps {
			if len(p) > 0 {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			return nil, nil
		}
		return out, nil
	default:
		return nil, nil
	}
}

// PolygonGeometry builds a Polygon geometry from a single coordinate set.
func PolygonGeometry(p PolygonCoords) *Geometry {
	coords, _ := json.Marshal(p) // marshaling float slices cannot fail
	return &Geometry{Type: "Polygon", Coordinates: coords}
}

// MultiPolygonGeometry builds a MultiPolygon from the given polygons,
// order preserved.
func MultiPolygonGeometry(ps []PolygonCoords) *Geometry {
	coords, _ := json.Marshal(ps)
	return &Geometry{Type: "MultiPolygon", Coordinates: coords}
}

type AlertFeature struct {
	ID         string          `json:"id,omitempty"`
	Type       string          `json:"type,omitempty"`
	Geometry   *Geometry       `json:"geometry"`
	Properties AlertProperties `json:"properties"`
}

// HasGeometry reports whether upstream supplied a usable shape. A null or
// empty geometry counts as absent.
func (f *AlertFeature) HasGeometry() bool {
	return f.Geometry != nil && f.Geometry.Type != ""
}

type AlertProperties struct {
	ID            string   `json:"@id,omitempty"`
	Event         string   `json:"event"`
	Headline      string   `json:"headline,omitempty"`
	AreaDesc      string   `json:"areaDesc,omitempty"`
	Severity      string   `json:"severity,omitempty"`
	Certainty     string   `json:"certainty,omitempty"`
	Urgency       string   `json:"urgency,omitempty"`
	Onset         string   `json:"onset,omitempty"`
	Expires       string   `json:"expires,omitempty"`
	Ends          string   `json:"ends,omitempty"`
	Description   string   `json:"description,omitempty"`
	Instruction   string   `json:"instruction,omitempty"`
	AffectedZones []string `json:"affectedZones,omitempty"`
}

// AlertCollection is the full active-alerts payload. It is replaced
// wholesale on every refresh and never mutated after caching.
type AlertCollection struct {
	Context  json.RawMessage `json:"@context,omitempty"`
	Type     string          `json:"type"`
	Features []*AlertFeature `json:"features"`
	Title    string          `json:"title,omitempty"`
	Updated  string          `json:"updated,omitempty"`
}
