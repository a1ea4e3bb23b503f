package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Geometry is a GeoJSON geometry. Coordinates stay in their decoded
// nested-array form so the bbox walker can traverse arbitrary nesting depth.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// Feature is a GeoJSON feature as used for the area of interest.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// polygonal geometry types accepted as an AOI.
func isPolygonal(geomType string) bool {
	return geomType == "Polygon" || geomType == "MultiPolygon"
}

// known non-polygonal GeoJSON geometry types, rejected with ErrInvalidGeometry
// rather than ErrInvalidInput so the caller learns the shape was understood
// but unusable.
var nonPolygonalTypes = map[string]bool{
	"Point":              true,
	"MultiPoint":         true,
	"LineString":         true,
	"MultiLineString":    true,
	"GeometryCollection": true,
}

// ExtractAOI reduces an arbitrary GeoJSON payload to exactly one Feature
// wrapping a Polygon or MultiPolygon geometry. Accepted shapes: a Feature, a
// FeatureCollection with exactly one Feature, a bare Polygon or MultiPolygon
// geometry, or a JSON-encoded string holding any of those. Everything else
// fails with ErrInvalidInput. The transform is pure; no partial results.
func ExtractAOI(raw json.RawMessage) (Feature, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Feature{}, fmt.Errorf("%w: no GeoJSON supplied", ErrInvalidInput)
	}

	// Some clients double-encode and send the GeoJSON as a JSON string.
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Feature{}, fmt.Errorf("%w: malformed GeoJSON string: %v", ErrInvalidInput, err)
		}
		if strings.TrimSpace(s) == "" {
			return Feature{}, fmt.Errorf("%w: empty GeoJSON string", ErrInvalidInput)
		}
		return ExtractAOI(json.RawMessage(s))
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return Feature{}, fmt.Errorf("%w: GeoJSON must be a JSON object or string: %v", ErrInvalidInput, err)
	}

	switch {
	case probe.Type == "Feature":
		var f Feature
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return Feature{}, fmt.Errorf("%w: malformed Feature: %v", ErrInvalidInput, err)
		}
		return finishAOIFeature(f)

	case probe.Type == "FeatureCollection":
		var fc struct {
			Features []Feature `json:"features"`
		}
		if err := json.Unmarshal(trimmed, &fc); err != nil {
			return Feature{}, fmt.Errorf("%w: malformed FeatureCollection: %v", ErrInvalidInput, err)
		}
		if len(fc.Features) != 1 {
			return Feature{}, fmt.Errorf("%w: FeatureCollection must contain exactly 1 feature, got %d", ErrInvalidInput, len(fc.Features))
		}
		f := fc.Features[0]
		if f.Type != "Feature" {
			return Feature{}, fmt.Errorf("%w: FeatureCollection does not contain a valid Feature", ErrInvalidInput)
		}
		return finishAOIFeature(f)

	case isPolygonal(probe.Type):
		var g Geometry
		if err := json.Unmarshal(trimmed, &g); err != nil {
			return Feature{}, fmt.Errorf("%w: malformed geometry: %v", ErrInvalidInput, err)
		}
		return Feature{Type: "Feature", Properties: map[string]any{}, Geometry: &g}, nil

	case nonPolygonalTypes[probe.Type]:
		return Feature{}, fmt.Errorf("%w: AOI must be a Polygon or MultiPolygon, got %s", ErrInvalidGeometry, probe.Type)

	default:
		return Feature{}, fmt.Errorf("%w: unsupported GeoJSON type %q (allowed: Feature, FeatureCollection with 1 feature, Polygon, MultiPolygon)", ErrInvalidInput, probe.Type)
	}
}

// finishAOIFeature validates a decoded feature and fills defaults.
func finishAOIFeature(f Feature) (Feature, error) {
	if f.Geometry == nil || f.Geometry.Type == "" {
		return Feature{}, fmt.Errorf("%w: feature has no geometry", ErrInvalidInput)
	}
	if f.Properties == nil {
		f.Properties = map[string]any{}
	}
	f.Type = "Feature"
	return f, nil
}
