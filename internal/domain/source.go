package domain

import (
	"context"
	"encoding/json"
)

// FeatureCollection is a raw upstream GetFeature response. Features stay as
// raw JSON so malformed entries can be skipped individually during assembly
// and geometries pass through byte-identical.
type FeatureCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

// WarningQuery identifies one upstream GetFeature request. Queries differing
// in any field are distinct cache entries.
type WarningQuery struct {
	TypeName    string
	BBox        BoundingBox
	MaxFeatures int
}

// WarningSource fetches warning polygons intersecting a bounding box.
type WarningSource interface {
	FetchWarnings(ctx context.Context, q WarningQuery) (*FeatureCollection, error)
}
