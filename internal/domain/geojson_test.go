package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squarePolygon = `{"type":"Polygon","coordinates":[[[10.0,50.0],[11.0,50.0],[11.0,51.0],[10.0,51.0],[10.0,50.0]]]}`

func TestExtractAOI_Feature(t *testing.T) {
	raw := json.RawMessage(`{"type":"Feature","properties":{"name":"aoi"},"geometry":` + squarePolygon + `}`)

	f, err := ExtractAOI(raw)
	require.NoError(t, err)

	assert.Equal(t, "Feature", f.Type)
	assert.Equal(t, "Polygon", f.Geometry.Type)
	assert.Equal(t, "aoi", f.Properties["name"])
}

func TestExtractAOI_FeatureCollectionWithOneFeature(t *testing.T) {
	raw := json.RawMessage(`{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":` + squarePolygon + `}]}`)

	f, err := ExtractAOI(raw)
	require.NoError(t, err)
	assert.Equal(t, "Polygon", f.Geometry.Type)
}

func TestExtractAOI_BareGeometries(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "polygon", raw: squarePolygon},
		{name: "multipolygon", raw: `{"type":"MultiPolygon","coordinates":[[[[10.0,50.0],[11.0,50.0],[11.0,51.0],[10.0,50.0]]]]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, err := ExtractAOI(json.RawMessage(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, "Feature", f.Type)
			assert.NotNil(t, f.Properties, "bare geometries get empty properties")
			assert.Empty(t, f.Properties)
		})
	}
}

func TestExtractAOI_JSONEncodedString(t *testing.T) {
	encoded, err := json.Marshal(squarePolygon)
	require.NoError(t, err)

	f, err := ExtractAOI(encoded)
	require.NoError(t, err)
	assert.Equal(t, "Polygon", f.Geometry.Type)
}

func TestExtractAOI_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty payload", raw: ``},
		{name: "empty string", raw: `""`},
		{name: "whitespace string", raw: `"   "`},
		{name: "unparseable text", raw: `"{not json"`},
		{name: "array", raw: `[1,2,3]`},
		{name: "number", raw: `42`},
		{name: "unknown type", raw: `{"type":"Banana"}`},
		{name: "feature without geometry", raw: `{"type":"Feature","properties":{}}`},
		{name: "feature with null geometry", raw: `{"type":"Feature","properties":{},"geometry":null}`},
		{name: "empty collection", raw: `{"type":"FeatureCollection","features":[]}`},
		{name: "two features", raw: `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":` + squarePolygon + `},{"type":"Feature","geometry":` + squarePolygon + `}]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractAOI(json.RawMessage(tc.raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExtractAOI_TwoFeaturesMentionsRequirement(t *testing.T) {
	raw := json.RawMessage(`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":` + squarePolygon + `},{"type":"Feature","geometry":` + squarePolygon + `}]}`)

	_, err := ExtractAOI(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly 1 feature")
}

func TestExtractAOI_NonPolygonalGeometry(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "point", raw: `{"type":"Point","coordinates":[10.0,50.0]}`},
		{name: "linestring", raw: `{"type":"LineString","coordinates":[[10.0,50.0],[11.0,51.0]]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractAOI(json.RawMessage(tc.raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidGeometry)
		})
	}
}
