package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func featureFromJSON(t *testing.T, raw string) Feature {
	t.Helper()
	f, err := ExtractAOI(json.RawMessage(raw))
	require.NoError(t, err)
	return f
}

func TestBoundsFromFeature_Polygon(t *testing.T) {
	f := featureFromJSON(t, `{"type":"Polygon","coordinates":[[[10.5,50.25],[11.75,50.25],[11.75,51.0],[10.5,51.0],[10.5,50.25]]]}`)

	box, err := BoundsFromFeature(f)
	require.NoError(t, err)

	assert.Equal(t, 10.5, box.MinX)
	assert.Equal(t, 50.25, box.MinY)
	assert.Equal(t, 11.75, box.MaxX)
	assert.Equal(t, 51.0, box.MaxY)
}

func TestBoundsFromFeature_MultiPolygon(t *testing.T) {
	f := featureFromJSON(t, `{"type":"MultiPolygon","coordinates":[
		[[[10.0,50.0],[11.0,50.0],[11.0,51.0],[10.0,50.0]]],
		[[[8.0,52.0],[9.0,52.0],[9.0,53.0],[8.0,52.0]]]
	]}`)

	box, err := BoundsFromFeature(f)
	require.NoError(t, err)

	assert.Equal(t, 8.0, box.MinX)
	assert.Equal(t, 50.0, box.MinY)
	assert.Equal(t, 11.0, box.MaxX)
	assert.Equal(t, 53.0, box.MaxY)
}

func TestBoundsFromFeature_MinNeverExceedsMax(t *testing.T) {
	inputs := []string{
		`{"type":"Polygon","coordinates":[[[10.0,50.0],[11.0,50.0],[11.0,51.0],[10.0,51.0],[10.0,50.0]]]}`,
		`{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[-7.5,-3.0],[-6.0,-3.0],[-6.0,-1.5],[-7.5,-3.0]]]}}`,
		`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"MultiPolygon","coordinates":[[[[0.0,0.0],[1.0,0.0],[1.0,1.0],[0.0,0.0]]]]}}]}`,
	}

	for _, raw := range inputs {
		box, err := BoundsFromFeature(featureFromJSON(t, raw))
		require.NoError(t, err)
		assert.LessOrEqual(t, box.MinX, box.MaxX)
		assert.LessOrEqual(t, box.MinY, box.MaxY)
	}
}

func TestBoundsFromFeature_IgnoresElevation(t *testing.T) {
	f := featureFromJSON(t, `{"type":"Polygon","coordinates":[[[10.0,50.0,120.5],[11.0,50.0,130.0],[11.0,51.0,99.0],[10.0,50.0,120.5]]]}`)

	box, err := BoundsFromFeature(f)
	require.NoError(t, err)

	assert.Equal(t, 10.0, box.MinX)
	assert.Equal(t, 51.0, box.MaxY)
}

func TestBoundsFromFeature_WrongGeometryType(t *testing.T) {
	f := Feature{
		Type:     "Feature",
		Geometry: &Geometry{Type: "Point", Coordinates: []any{10.0, 50.0}},
	}

	_, err := BoundsFromFeature(f)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestBoundsFromFeature_MissingGeometry(t *testing.T) {
	_, err := BoundsFromFeature(Feature{Type: "Feature"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestBoundsFromFeature_EmptyCoordinates(t *testing.T) {
	f := featureFromJSON(t, `{"type":"Polygon","coordinates":[]}`)

	_, err := BoundsFromFeature(f)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyGeometry)
}

func TestBoundingBoxString_FixedPrecision(t *testing.T) {
	box := BoundingBox{MinX: 10.1234567, MinY: 50, MaxX: 11.9999999, MaxY: 51.5}
	assert.Equal(t, "10.123457,50.000000,12.000000,51.500000", box.String())
}
