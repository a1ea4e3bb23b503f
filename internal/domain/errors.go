package domain

import "errors"

// Pipeline error taxonomy. Stages wrap these sentinels with fmt.Errorf("%w: ...")
// and the API boundary maps every kind to an HTTP 400 JSON error, so callers
// match with errors.Is or on message content.
var (
	// ErrInvalidInput marks malformed, absent, or wrong-shape AOI JSON.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidGeometry marks an AOI geometry that is not a Polygon or
	// MultiPolygon, or a feature without a geometry.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrEmptyGeometry marks a geometry with no coordinate pairs.
	ErrEmptyGeometry = errors.New("empty geometry")

	// ErrUpstream marks transport failures, non-success statuses, non-JSON
	// bodies, and JSON that is not a FeatureCollection.
	ErrUpstream = errors.New("upstream error")

	// ErrInternal marks unexpected failures during normalization or assembly.
	ErrInternal = errors.New("internal error")
)
